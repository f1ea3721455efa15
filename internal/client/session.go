package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Session 保存登录后的访问令牌与用户 ID，可选地持久化到文件
type Session struct {
	Token  string `json:"token"`
	UserID uint   `json:"userId"`

	path string
}

// LoadSession 从 path 读取会话；文件不存在时返回空会话
func LoadSession(path string) (*Session, error) {
	s := &Session{path: path}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	if err := json.Unmarshal(raw, s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return s, nil
}

// LoggedIn reports whether the session holds a token.
func (s *Session) LoggedIn() bool {
	return s != nil && s.Token != ""
}

// Save 写回会话文件，内存会话直接忽略
func (s *Session) Save() error {
	if s.path == "" {
		return nil
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create session dir: %w", err)
		}
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o600)
}

// Clear 清空令牌并删除会话文件
func (s *Session) Clear() error {
	s.Token = ""
	s.UserID = 0
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
