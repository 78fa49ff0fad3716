// Package storage persists token usage counters. Prompts and generated
// results are never written to disk.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	usageFile      = "usage.json"
	historyFile    = "usage_history.json"
	maxHistoryDays = 30
	dayLayout      = "2006-01-02"
)

// SessionUsage tracks cumulative token usage since the last reset.
type SessionUsage struct {
	StartedAt    time.Time      `json:"started_at"`
	PromptTokens int            `json:"prompt_tokens"`
	OutputTokens int            `json:"output_tokens"`
	Requests     int            `json:"requests"`
	Failures     int            `json:"failures"`
	ByTemplate   map[string]int `json:"by_template,omitempty"`
}

// TotalTokens returns prompt plus output tokens.
func (u SessionUsage) TotalTokens() int {
	return u.PromptTokens + u.OutputTokens
}

// DailyUsage tracks aggregate usage for a single calendar day.
type DailyUsage struct {
	Date         string `json:"date"` // YYYY-MM-DD
	PromptTokens int    `json:"prompt_tokens"`
	OutputTokens int    `json:"output_tokens"`
	Requests     int    `json:"requests"`
	Failures     int    `json:"failures"`
}

// UsageStore accumulates usage and persists it under dir.
type UsageStore struct {
	mu      sync.Mutex
	dir     string
	now     func() time.Time
	current *SessionUsage
}

// NewUsageStore loads the stored session from dir, or starts a new one.
func NewUsageStore(dir string) *UsageStore {
	s := &UsageStore{dir: dir, now: time.Now}
	if data, err := os.ReadFile(s.filePath()); err == nil {
		var usage SessionUsage
		if json.Unmarshal(data, &usage) == nil {
			s.current = &usage
		}
	}
	if s.current == nil {
		s.current = &SessionUsage{StartedAt: s.now()}
	}
	return s
}

func (s *UsageStore) filePath() string {
	return filepath.Join(s.dir, usageFile)
}

func (s *UsageStore) historyPath() string {
	return filepath.Join(s.dir, historyFile)
}

// RecordUsage adds one successful call for template.
func (s *UsageStore) RecordUsage(template string, promptTokens, outputTokens int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current.PromptTokens += promptTokens
	s.current.OutputTokens += outputTokens
	s.current.Requests++
	if s.current.ByTemplate == nil {
		s.current.ByTemplate = make(map[string]int)
	}
	s.current.ByTemplate[template]++

	s.persistUnsafe()
	s.updateDailyUnsafe(func(d *DailyUsage) {
		d.PromptTokens += promptTokens
		d.OutputTokens += outputTokens
		d.Requests++
	})
}

// RecordFailure counts a call that did not return text.
func (s *UsageStore) RecordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current.Failures++
	s.persistUnsafe()
	s.updateDailyUnsafe(func(d *DailyUsage) { d.Failures++ })
}

// Current returns a copy of the session usage.
func (s *UsageStore) Current() SessionUsage {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *s.current
	if s.current.ByTemplate != nil {
		cp.ByTemplate = make(map[string]int, len(s.current.ByTemplate))
		for k, v := range s.current.ByTemplate {
			cp.ByTemplate[k] = v
		}
	}
	return cp
}

// Reset starts a new session. Daily history is kept.
func (s *UsageStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = &SessionUsage{StartedAt: s.now()}
	s.persistUnsafe()
}

// History returns up to days entries, most recent first. days <= 0 returns all.
func (s *UsageStore) History(days int) []DailyUsage {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.loadHistoryUnsafe()
	if len(history) == 0 {
		return nil
	}
	if days <= 0 || days > len(history) {
		days = len(history)
	}

	result := make([]DailyUsage, 0, days)
	for i := len(history) - 1; i >= len(history)-days; i-- {
		result = append(result, history[i])
	}
	return result
}

func (s *UsageStore) persistUnsafe() {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return
	}
	data, err := json.MarshalIndent(s.current, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(s.filePath(), data, 0o600)
}

func (s *UsageStore) updateDailyUnsafe(apply func(*DailyUsage)) {
	today := s.now().Format(dayLayout)
	history := s.loadHistoryUnsafe()

	idx := -1
	for i := range history {
		if history[i].Date == today {
			idx = i
			break
		}
	}
	if idx < 0 {
		history = append(history, DailyUsage{Date: today})
		idx = len(history) - 1
	}
	apply(&history[idx])

	if len(history) > maxHistoryDays {
		history = history[len(history)-maxHistoryDays:]
	}
	s.saveHistoryUnsafe(history)
}

func (s *UsageStore) loadHistoryUnsafe() []DailyUsage {
	data, err := os.ReadFile(s.historyPath())
	if err != nil {
		return nil
	}
	var history []DailyUsage
	if json.Unmarshal(data, &history) != nil {
		return nil
	}
	return history
}

func (s *UsageStore) saveHistoryUnsafe(history []DailyUsage) {
	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(s.historyPath(), data, 0o600)
}

// FormatTokenCount formats a token count for display (e.g., 48543 → "48.5K").
func FormatTokenCount(tokens int) string {
	switch {
	case tokens >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(tokens)/1_000_000)
	case tokens >= 1_000:
		return fmt.Sprintf("%.1fK", float64(tokens)/1_000)
	default:
		return fmt.Sprintf("%d", tokens)
	}
}
