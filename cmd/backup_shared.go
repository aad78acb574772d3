package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sabucaps/brazilian/internal/app"
)

func sectionsFromConfig(key string) []string {
	return normalizeSections(viper.GetStringSlice(key))
}

func normalizeSections(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	result := make([]string, 0, len(values))
	for _, value := range values {
		name := strings.TrimSpace(value)
		if name == "" {
			continue
		}
		result = append(result, strings.ToLower(name))
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func bindFlagToViper(key string, flag *pflag.Flag) {
	if flag == nil {
		return
	}
	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// withContainer builds the application for one command run and tears it
// down afterwards.
func withContainer(run func(c *app.Container) error) error {
	container, cleanup, err := app.Initialize()
	if err != nil {
		return fmt.Errorf("初始化应用失败: %w", err)
	}
	defer cleanup()
	return run(container)
}

// parseNow reads an optional RFC 3339 timestamp flag. Empty means now.
func parseNow(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Now(), nil
	}
	now, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("无法解析时间 %q (需要 RFC3339 格式): %w", raw, err)
	}
	return now, nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
