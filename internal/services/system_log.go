package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/araofarias801-dev/araoalvesdefarias036500/internal/models"
	"github.com/araofarias801-dev/araoalvesdefarias036500/pkg/logger"
	"gorm.io/gorm"
)

const auditModule = "auth"

// AuditLogger writes authentication events to system_logs. A failed write
// is logged and never fails the request that caused it. A nil
// *AuditLogger discards everything.
type AuditLogger struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAuditLogger(db *gorm.DB) *AuditLogger {
	return &AuditLogger{db: db, now: time.Now}
}

func (a *AuditLogger) Info(ctx context.Context, action, message, username string, client ClientInfo, extra interface{}) {
	a.write(ctx, "info", action, message, username, client, extra)
}

func (a *AuditLogger) Warning(ctx context.Context, action, message, username string, client ClientInfo, extra interface{}) {
	a.write(ctx, "warning", action, message, username, client, extra)
}

func (a *AuditLogger) write(ctx context.Context, level, action, message, username string, client ClientInfo, extra interface{}) {
	if a == nil || a.db == nil {
		return
	}

	var extraStr string
	if extra != nil {
		if b, err := json.Marshal(extra); err == nil {
			extraStr = string(b)
		}
	}

	entry := &models.SystemLog{
		Level:     level,
		Module:    auditModule,
		Action:    action,
		Message:   message,
		Username:  username,
		IP:        client.IP,
		UserAgent: truncate(client.UserAgent, 500),
		Extra:     extraStr,
		CreatedAt: a.now(),
	}
	if err := a.db.WithContext(ctx).Create(entry).Error; err != nil {
		logger.Error().Err(err).Str("action", action).Msg("write audit log")
	}
}
