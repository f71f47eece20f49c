package store

import (
	"errors"
	"time"

	"github.com/freedaysapp/ledger_client/utils"
	"gorm.io/gorm"
)

// Setting is one durable key/value row. Together with the transaction table
// these rows are the client's entire durable footprint.
type Setting struct {
	Key   string `gorm:"primaryKey;size:64"`
	Value string `gorm:"size:2048"`
}

func (Setting) TableName() string {
	return "settings"
}

const (
	settingKeyToken      = "access_token"
	settingKeyOnlineMode = "online_mode"
	settingKeyLastSync   = "last_sync_time"
)

func (s *LocalStore) getSetting(key string) (string, error) {
	var row Setting
	err := s.db.Where("`key` = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", &utils.LocalStoreError{Op: "getSetting", Err: err}
	}
	return row.Value, nil
}

func (s *LocalStore) setSetting(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := Setting{Key: key, Value: value}
	err := s.db.Save(&row).Error
	if err != nil {
		return &utils.LocalStoreError{Op: "setSetting", Err: err}
	}
	return nil
}

func (s *LocalStore) deleteSetting(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Where("`key` = ?", key).Delete(&Setting{}).Error; err != nil {
		return &utils.LocalStoreError{Op: "deleteSetting", Err: err}
	}
	return nil
}

func (s *LocalStore) Token() (string, error) {
	return s.getSetting(settingKeyToken)
}

func (s *LocalStore) SetToken(token string) error {
	return s.setSetting(settingKeyToken, token)
}

func (s *LocalStore) ClearToken() error {
	return s.deleteSetting(settingKeyToken)
}

func (s *LocalStore) OnlineFlag() (bool, error) {
	v, err := s.getSetting(settingKeyOnlineMode)
	return v == "1", err
}

func (s *LocalStore) SetOnlineFlag(on bool) error {
	v := "0"
	if on {
		v = "1"
	}
	return s.setSetting(settingKeyOnlineMode, v)
}

// LastSyncTime returns the watermark of the last successful reconciliation,
// zero time when none is recorded.
func (s *LocalStore) LastSyncTime() (time.Time, error) {
	v, err := s.getSetting(settingKeyLastSync)
	if err != nil || v == "" {
		return time.Time{}, err
	}
	t, perr := time.Parse(time.RFC3339, v)
	if perr != nil {
		return time.Time{}, nil
	}
	return t, nil
}

func (s *LocalStore) SetLastSyncTime(t time.Time) error {
	return s.setSetting(settingKeyLastSync, t.UTC().Format(time.RFC3339))
}
