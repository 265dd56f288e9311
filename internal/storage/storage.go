// Package storage keeps per-guild bot records on top of the JSON datastore.
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/keshon/musicbot/datastore"
)

const commandHistoryLimit = 50

type Storage struct {
	ds *datastore.DataStore
}

// CommandHistoryRecord is one permission decision made by the dispatcher.
type CommandHistoryRecord struct {
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Command   string    `json:"command"`
	Args      string    `json:"args,omitempty"`
	Group     string    `json:"group"`
	Allowed   bool      `json:"allowed"`
	Datetime  time.Time `json:"datetime"`
}

type Record struct {
	CommandsHistoryList []CommandHistoryRecord `json:"cmd_history"`
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

// AppendCommandToHistory appends rec to the guild history, keeping the newest entries.
func (s *Storage) AppendCommandToHistory(guildID string, rec CommandHistoryRecord) error {
	return s.ds.Update(guildID, func(raw json.RawMessage) (any, error) {
		record, err := decodeRecord(raw)
		if err != nil {
			return nil, err
		}
		record.CommandsHistoryList = append(record.CommandsHistoryList, rec)
		if n := len(record.CommandsHistoryList); n > commandHistoryLimit {
			record.CommandsHistoryList = record.CommandsHistoryList[n-commandHistoryLimit:]
		}
		return record, nil
	})
}

func (s *Storage) FetchCommandHistory(guildID string) ([]CommandHistoryRecord, error) {
	var record Record
	if _, err := s.ds.Get(guildID, &record); err != nil {
		return nil, err
	}
	return record.CommandsHistoryList, nil
}

func decodeRecord(raw json.RawMessage) (*Record, error) {
	record := &Record{CommandsHistoryList: []CommandHistoryRecord{}}
	if len(raw) == 0 {
		return record, nil
	}
	if err := json.Unmarshal(raw, record); err != nil {
		return nil, fmt.Errorf("error unmarshalling guild record: %w", err)
	}
	return record, nil
}
