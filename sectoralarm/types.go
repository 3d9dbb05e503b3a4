package sectoralarm

import "encoding/json"

// Panel is one entry of GetPanelList. Only the fields this package relies on are typed;
// Raw keeps the full object as the portal sent it.
type Panel struct {
	PanelID     string `json:"PanelId"`
	DisplayName string `json:"DisplayName,omitempty"`
	ArmedStatus string `json:"ArmedStatus,omitempty"`

	Raw json.RawMessage `json:"-"`
}

func (p *Panel) UnmarshalJSON(b []byte) error {
	type plain Panel
	if err := json.Unmarshal(b, (*plain)(p)); err != nil {
		return err
	}
	p.Raw = append(p.Raw[:0], b...)
	return nil
}

// PanelData is the panel summary embedded in overview and arm responses.
type PanelData struct {
	PanelID     string `json:"PanelId"`
	DisplayName string `json:"PanelDisplayName,omitempty"`
	ArmedStatus string `json:"ArmedStatus"`
}

// Overview is the GetOverview response.
type Overview struct {
	Panel PanelData `json:"Panel"`

	Raw json.RawMessage `json:"-"`
}

func (o *Overview) UnmarshalJSON(b []byte) error {
	type plain Overview
	if err := json.Unmarshal(b, (*plain)(o)); err != nil {
		return err
	}
	o.Raw = append(o.Raw[:0], b...)
	return nil
}

// HistoryEvent is one GetPanelHistory entry. Values are kept as the portal formats them.
type HistoryEvent struct {
	Time      string `json:"Time"`
	EventType string `json:"EventType"`
	User      string `json:"User"`
	Channel   string `json:"Channel"`

	Raw json.RawMessage `json:"-"`
}

func (e *HistoryEvent) UnmarshalJSON(b []byte) error {
	type plain HistoryEvent
	if err := json.Unmarshal(b, (*plain)(e)); err != nil {
		return err
	}
	e.Raw = append(e.Raw[:0], b...)
	return nil
}

// ArmResult is the ArmPanel response.
type ArmResult struct {
	Status    string    `json:"status"`
	PanelData PanelData `json:"panelData"`

	Raw json.RawMessage `json:"-"`
}

func (r *ArmResult) UnmarshalJSON(b []byte) error {
	type plain ArmResult
	if err := json.Unmarshal(b, (*plain)(r)); err != nil {
		return err
	}
	r.Raw = append(r.Raw[:0], b...)
	return nil
}

// armRequest is the ArmPanel body. Field order matches what the portal's own UI sends.
type armRequest struct {
	ArmCmd    ArmMode `json:"ArmCmd"`
	ID        string  `json:"id"`
	HasLocks  bool    `json:"HasLocks"`
	PanelCode string  `json:"PanelCode"`
}

type overviewRequest struct {
	PanelID string `json:"panelId"`
}
