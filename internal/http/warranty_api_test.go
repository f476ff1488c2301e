package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"ewarranty/internal/config"
)

type registrationBody struct {
	ID          int64  `json:"id"`
	Serial      string `json:"serial"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Status      string `json:"status"`
}

// seedSerials creates a product holding the given serials and returns its id.
func seedSerials(t *testing.T, env *testEnv, tok, name, serials string) int64 {
	t.Helper()
	resp := env.do(t, multipartRequest(t, "POST", "/api/products", tok, map[string]string{
		"name": name, "price": "99", "serials": serials,
	}))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("seed product: %d", resp.StatusCode)
	}
	var p productBody
	decode(t, resp, &p)
	return p.ID
}

func TestValidateSerial(t *testing.T) {
	env := newTestApp(t)
	tok := env.login(t)
	pid := seedSerials(t, env, tok, "Headphones", `["WH1001"]`)

	resp := env.json(t, "POST", "/api/warranty/validate", "", map[string]string{"serial": " wh1001 "})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var info struct {
		ProductID   int64  `json:"product_id"`
		ProductName string `json:"product_name"`
		Serial      string `json:"serial"`
	}
	decode(t, resp, &info)
	if info.ProductID != pid || info.ProductName != "Headphones" || info.Serial != "WH1001" {
		t.Fatalf("unexpected validation result %+v", info)
	}

	cases := []struct {
		serial string
		status int
		code   string
	}{
		{"UNKNOWN1", http.StatusNotFound, "NOT_FOUND"},
		{"wh-1001", http.StatusBadRequest, "VALIDATION"},
		{"", http.StatusBadRequest, "VALIDATION"},
	}
	for _, tc := range cases {
		resp := env.json(t, "POST", "/api/warranty/validate", "", map[string]string{"serial": tc.serial})
		if resp.StatusCode != tc.status {
			t.Fatalf("%q: expected %d, got %d", tc.serial, tc.status, resp.StatusCode)
		}
		var out map[string]any
		decode(t, resp, &out)
		if out["code"] != tc.code {
			t.Fatalf("%q: expected code %s, got %v", tc.serial, tc.code, out)
		}
	}
}

func TestRegisterWarrantyFlow(t *testing.T) {
	env := newTestApp(t)
	tok := env.login(t)
	pid := seedSerials(t, env, tok, "Headphones", `["WH1001"]`)

	reg := map[string]any{
		"serial": "wh1001", "product_id": pid,
		"user_name": "Jane Doe", "user_email": "jane@example.com", "user_phone": "+1 555 0100",
	}
	resp := env.json(t, "POST", "/api/warranty/register", "", reg)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, bodyString(t, resp))
	}
	var w registrationBody
	decode(t, resp, &w)
	if w.Status != "pending" || w.Serial != "WH1001" || w.ProductName != "Headphones" {
		t.Fatalf("unexpected registration %+v", w)
	}
	if n := env.count(t, "warranty_registrations"); n != 1 {
		t.Fatalf("expected exactly one registration, got %d", n)
	}

	// the serial is now taken
	again := env.json(t, "POST", "/api/warranty/validate", "", map[string]string{"serial": "WH1001"})
	if again.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", again.StatusCode)
	}
	var out map[string]any
	decode(t, again, &out)
	if out["code"] != "ALREADY_REGISTERED" || out["serial"] != "WH1001" {
		t.Fatalf("unexpected body %v", out)
	}
	if resp := env.json(t, "POST", "/api/warranty/register", "", reg); resp.StatusCode != http.StatusConflict {
		t.Fatalf("second registration: expected 409, got %d", resp.StatusCode)
	}

	// admin review
	var list []registrationBody
	decode(t, env.json(t, "GET", "/api/warranty?status=pending&q=wh10", tok, nil), &list)
	if len(list) != 1 || list[0].ID != w.ID {
		t.Fatalf("admin list: %+v", list)
	}

	path := fmt.Sprintf("/api/warranty/%d/status", w.ID)
	resp = env.json(t, "PUT", path, tok, map[string]string{"status": "accepted"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("accept: expected 200, got %d", resp.StatusCode)
	}
	resp = env.json(t, "PUT", path, tok, map[string]string{"status": "rejected"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("accepted -> rejected: expected 409, got %d", resp.StatusCode)
	}
	decode(t, resp, &out)
	if out["code"] != "INVALID_TRANSITION" {
		t.Fatalf("unexpected body %v", out)
	}
	if resp := env.json(t, "PUT", path, tok, map[string]string{"status": "archived"}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown status: expected 400, got %d", resp.StatusCode)
	}

	if resp := env.json(t, "DELETE", fmt.Sprintf("/api/warranty/%d", w.ID), tok, nil); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", resp.StatusCode)
	}
	if resp := env.json(t, "GET", fmt.Sprintf("/api/warranty/%d", w.ID), tok, nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", resp.StatusCode)
	}
	// deleting frees the serial
	if resp := env.json(t, "POST", "/api/warranty/validate", "", map[string]string{"serial": "WH1001"}); resp.StatusCode != http.StatusOK {
		t.Fatalf("validate after delete: expected 200, got %d", resp.StatusCode)
	}
}

func TestRegisterValidation(t *testing.T) {
	env := newTestApp(t)
	tok := env.login(t)
	pid := seedSerials(t, env, tok, "Headphones", `["WH1001"]`)

	cases := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"missing name", map[string]any{"serial": "WH1001", "product_id": pid, "user_email": "a@b.co"}, "user_name"},
		{"bad email", map[string]any{"serial": "WH1001", "product_id": pid, "user_name": "A", "user_email": "nope"}, "user_email"},
		{"bad phone", map[string]any{"serial": "WH1001", "product_id": pid, "user_name": "A", "user_email": "a@b.co", "user_phone": "call me"}, "user_phone"},
		{"wrong product", map[string]any{"serial": "WH1001", "product_id": pid + 7, "user_name": "A", "user_email": "a@b.co"}, "product_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := env.json(t, "POST", "/api/warranty/register", "", tc.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
			var out map[string]any
			decode(t, resp, &out)
			if out["field"] != tc.field {
				t.Fatalf("expected field %s, got %v", tc.field, out)
			}
		})
	}
	if n := env.count(t, "warranty_registrations"); n != 0 {
		t.Fatalf("expected no registrations, got %d", n)
	}
}

func TestLenientModeAllowsRepeatRegistration(t *testing.T) {
	env := newTestAppWith(t, func(c *config.Config) { c.WarrantyStrict = false })
	tok := env.login(t)
	pid := seedSerials(t, env, tok, "Headphones", `["WH1001"]`)

	reg := map[string]any{"serial": "WH1001", "product_id": pid, "user_name": "Jane", "user_email": "jane@example.com"}
	for i := 0; i < 2; i++ {
		if resp := env.json(t, "POST", "/api/warranty/register", "", reg); resp.StatusCode != http.StatusCreated {
			t.Fatalf("registration %d: expected 201, got %d", i, resp.StatusCode)
		}
	}
}
