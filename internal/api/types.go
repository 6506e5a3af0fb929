package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"roster-tracker/internal/domain"
)

// wireID accepts both numeric and string identifiers and keeps them opaque.
type wireID string

func (id *wireID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = wireID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*id = wireID(n.String())
	return nil
}

type wireSeasonStat struct {
	domain.SeasonStat
	ID       wireID `json:"id"`
	PlayerID wireID `json:"player_id"`
}

type wirePlayer struct {
	domain.Player
	ID    wireID           `json:"id"`
	Stats []wireSeasonStat `json:"stats"`
}

func (w wirePlayer) toDomain() domain.Player {
	p := w.Player
	p.ID = string(w.ID)
	p.Stats = make([]domain.SeasonStat, 0, len(w.Stats))
	for _, s := range w.Stats {
		stat := s.SeasonStat
		stat.ID = string(s.ID)
		stat.PlayerID = string(s.PlayerID)
		if stat.PlayerID == "" {
			stat.PlayerID = p.ID
		}
		p.Stats = append(p.Stats, stat)
	}
	return p
}

// errorDetail extracts the human readable part of an error body, which is
// either {"detail": "..."} or {"detail": [{"msg": "..."}, ...]}.
func errorDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return text
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
