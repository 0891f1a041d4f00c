package status

import (
	"encoding/json"
	"fmt"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	DecoderState  string     `json:"decoder_state"`
	LastFrame     *FrameJSON `json:"last_frame,omitempty"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"counts"`
	Config        ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// FrameJSON is the JSON representation of the last decoded frame.
type FrameJSON struct {
	Timestamp string `json:"timestamp"`
	Value     string `json:"value"`
	ZMask     string `json:"z_mask"`
	Trinary   string `json:"trinary"`
}

// CountsJSON is the JSON representation of decoder activity counters.
type CountsJSON struct {
	Frames       uint64 `json:"frames"`
	Glitches     uint64 `json:"glitches"`
	Aborts       uint64 `json:"aborts"`
	Resyncs      uint64 `json:"resyncs"`
	EdgesDropped uint64 `json:"edges_dropped"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Chip          string  `json:"chip"`
	OscPreset     string  `json:"osc_preset"`
	FoscKHz       uint16  `json:"fosc_khz"`
	Tolerance     float64 `json:"tolerance"`
	TickUS        int64   `json:"tick_us"`
	NoiseFilterUS int64   `json:"noise_filter_us"`
	Pin           int     `json:"pin"`
	Broker        string  `json:"broker"`
	HTTPAddr      string  `json:"http_addr"`
	HeartbeatMs   int64   `json:"heartbeat_ms"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		DecoderState:  snap.DecoderState,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Frames:       snap.Counts.Frames,
			Glitches:     snap.Counts.Glitches,
			Aborts:       snap.Counts.Aborts,
			Resyncs:      snap.Counts.Resyncs,
			EdgesDropped: snap.EdgesDropped,
		},
		Config: ConfigJSON{
			Chip:          snap.Config.Chip,
			OscPreset:     snap.Config.OscPreset,
			FoscKHz:       snap.Config.FoscKHz,
			Tolerance:     snap.Config.Tolerance,
			TickUS:        snap.Config.TickUS,
			NoiseFilterUS: snap.Config.NoiseFilterUS,
			Pin:           snap.Config.Pin,
			Broker:        snap.Config.Broker,
			HTTPAddr:      snap.Config.HTTPAddr,
			HeartbeatMs:   snap.Config.HeartbeatMs,
		},
	}

	if snap.LastFrame != nil {
		inner.LastFrame = &FrameJSON{
			Timestamp: snap.LastFrame.Time.UTC().Format(time.RFC3339),
			Value:     fmt.Sprintf("0x%04X", snap.LastFrame.Value),
			ZMask:     fmt.Sprintf("0x%04X", snap.LastFrame.ZMask),
			Trinary:   snap.LastFrame.Trinary,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
