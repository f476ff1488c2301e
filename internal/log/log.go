// Package log writes one JSON object per line through the standard logger,
// so log.SetOutput redirects these entries along with everything else.
package log

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

type Level string

const (
	LevelInfo  Level = "info"
	LevelAudit Level = "audit"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Fields carries the action-specific detail of an entry.
type Fields = map[string]any

const adminKey = "log.admin_id"

type request struct {
	ID     string `json:"id,omitempty"`
	IP     string `json:"ip"`
	Method string `json:"method"`
	Path   string `json:"path"`
	Status int    `json:"status,omitempty"`
}

type event struct {
	TS      string   `json:"ts"`
	Level   Level    `json:"level"`
	Action  string   `json:"action"`
	AdminID int64    `json:"admin_id,omitempty"`
	Req     *request `json:"req,omitempty"`
	Err     string   `json:"err,omitempty"`
	Fields  Fields   `json:"fields,omitempty"`
}

// SetAdmin tags the remaining entries of this request with the admin id.
func SetAdmin(c *fiber.Ctx, id int64) { c.Locals(adminKey, id) }

func emit(level Level, c *fiber.Ctx, action string, err error, fields Fields) {
	ev := event{
		TS:     time.Now().UTC().Format(time.RFC3339Nano),
		Level:  level,
		Action: action,
		Fields: fields,
	}
	if c != nil {
		ev.Req = &request{
			IP:     c.IP(),
			Method: c.Method(),
			Path:   c.Path(),
			Status: c.Response().StatusCode(),
		}
		ev.Req.ID, _ = c.Locals("requestid").(string)
		ev.AdminID, _ = c.Locals(adminKey).(int64)
	}
	if err != nil {
		ev.Err = err.Error()
	}
	b, encErr := json.Marshal(ev)
	if encErr != nil {
		// unencodable fields are replaced by the encoding error
		ev.Fields = Fields{"encode_err": encErr.Error()}
		b, _ = json.Marshal(ev)
	}
	log.Println(string(b))
}

func Info(c *fiber.Ctx, action string, fields Fields) { emit(LevelInfo, c, action, nil, fields) }

// Audit records admin mutations and logins.
func Audit(c *fiber.Ctx, action string, fields Fields) { emit(LevelAudit, c, action, nil, fields) }

// Security records rejected requests: auth failures, blocked paths, rate limits.
func Security(c *fiber.Ctx, action string, fields Fields) { emit(LevelWarn, c, action, nil, fields) }

func Error(c *fiber.Ctx, action string, err error, fields Fields) {
	emit(LevelError, c, action, err, fields)
}
