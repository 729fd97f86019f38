package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Auth:   AuthConfig{JWTSecret: "test-secret-key-for-unit-testing"},
		Notify: NotifyConfig{Workers: 2, DeadlineWindow: 24 * time.Hour},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("期望校验通过，实际: %v", err)
	}
}

func TestValidate_ShortSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.JWTSecret = "short"
	if err := cfg.Validate(); err == nil {
		t.Error("jwt_secret 过短应校验失败")
	}
}

func TestValidate_PusherEnabledWithoutCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.Pusher.Enabled = true
	cfg.Pusher.Key = "key"
	if err := cfg.Validate(); err == nil {
		t.Error("启用 pusher 但缺少凭据应校验失败")
	}

	cfg.Pusher.AppID = "1"
	cfg.Pusher.Secret = "secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("凭据齐全应通过，实际: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("非法端口应校验失败")
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9090
auth:
  jwt_secret: file-secret-0123456789
notify:
  deadline_window: 12h
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}

	t.Setenv("ATLAS_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("期望 port=9090，实际=%d", cfg.Server.Port)
	}
	if cfg.Notify.DeadlineWindow != 12*time.Hour {
		t.Errorf("期望 deadline_window=12h，实际=%v", cfg.Notify.DeadlineWindow)
	}
	if cfg.Notify.Workers != 3 {
		t.Errorf("期望默认 workers=3，实际=%d", cfg.Notify.Workers)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("环境变量应覆盖日志级别，实际=%s", cfg.Log.Level)
	}
}
