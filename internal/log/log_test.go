package log_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applog "ewarranty/internal/log"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	w, flags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(w)
		log.SetFlags(flags)
	})
	return &buf
}

func TestEntryCarriesRequestAndAdmin(t *testing.T) {
	buf := capture(t)
	app := fiber.New()
	app.Post("/api/things", func(c *fiber.Ctx) error {
		c.Locals("requestid", "rid-1")
		applog.SetAdmin(c, 7)
		c.Status(fiber.StatusCreated)
		applog.Audit(c, "thing.create", applog.Fields{"thing_id": 3})
		return nil
	})
	_, err := app.Test(httptest.NewRequest("POST", "/api/things", nil), -1)
	require.NoError(t, err)

	var got struct {
		Level   string `json:"level"`
		Action  string `json:"action"`
		AdminID int64  `json:"admin_id"`
		Req     struct {
			ID     string `json:"id"`
			Method string `json:"method"`
			Path   string `json:"path"`
			Status int    `json:"status"`
		} `json:"req"`
		Fields map[string]any `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &got))
	assert.Equal(t, "audit", got.Level)
	assert.Equal(t, "thing.create", got.Action)
	assert.Equal(t, int64(7), got.AdminID)
	assert.Equal(t, "rid-1", got.Req.ID)
	assert.Equal(t, "POST", got.Req.Method)
	assert.Equal(t, "/api/things", got.Req.Path)
	assert.Equal(t, fiber.StatusCreated, got.Req.Status)
	assert.Equal(t, float64(3), got.Fields["thing_id"])
}

func TestErrorWithoutRequest(t *testing.T) {
	buf := capture(t)
	applog.Error(nil, "job.fail", errors.New("disk full"), applog.Fields{"bad": func() {}})

	var got map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &got))
	assert.Equal(t, "error", got["level"])
	assert.Equal(t, "disk full", got["err"])
	assert.NotContains(t, got, "req")
	assert.Contains(t, got["fields"], "encode_err")
}
