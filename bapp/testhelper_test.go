package bapp_test

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/advdv/broute"
	"github.com/advdv/broute/bapp"
	"github.com/advdv/broute/bapp/bapptest"
)

// TestEnv is a test environment with app-specific fields beyond BaseEnvironment.
type TestEnv struct {
	bapp.BaseEnvironment
	MainTableName string `env:"MAIN_TABLE_NAME,required"`
}

// setTestEnvVars sets TestEnv-specific env vars that are not part of BaseEnvironment.
func setTestEnvVars(t *testing.T) {
	t.Helper()
	t.Setenv("MAIN_TABLE_NAME", "test-table")
}

// setTestEnvForTestEnv is a convenience that calls SetBaseEnv and setTestEnvVars.
func setTestEnvForTestEnv(t *testing.T, port int) *bapptest.Env {
	t.Helper()
	env := bapptest.SetBaseEnv(t, port)
	setTestEnvVars(t)
	return env
}

// Handlers demonstrates injection of the runtime into handlers.
type Handlers struct {
	rt *bapp.Runtime[TestEnv]
}

func NewHandlers(rt *bapp.Runtime[TestEnv]) *Handlers {
	return &Handlers{rt: rt}
}

func (h *Handlers) TestContext(_ *broute.Request, resp *broute.Response, c *broute.Context) error {
	env := h.rt.Env()

	itemURL, err := h.rt.Reverse("get-item", map[string]string{"id": "test-123"})
	if err != nil {
		return err
	}

	bapp.Span(c).AddEvent("context-test")
	bapp.Log(c).Info("testing context features")

	return writeJSON(resp, http.StatusOK, map[string]any{
		"env": map[string]string{
			"table":        env.MainTableName,
			"service_name": env.ServiceName,
		},
		"reversed_url": itemURL,
	})
}

func (h *Handlers) CreateItem(req *broute.Request, resp *broute.Response, c *broute.Context) error {
	var body map[string]any
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return broute.NewError(broute.CodeBadRequest, err)
	}

	bapp.Log(c).Info("creating item")

	return writeJSON(resp, http.StatusCreated, map[string]any{
		"id":    "item-123",
		"table": h.rt.Env().MainTableName,
		"data":  body,
	})
}

func (h *Handlers) GetItem(_ *broute.Request, resp *broute.Response, c *broute.Context) error {
	id := c.Param("id")
	selfURL, _ := h.rt.Reverse("get-item", map[string]string{"id": id})

	return writeJSON(resp, http.StatusOK, map[string]any{
		"id":       id,
		"table":    h.rt.Env().MainTableName,
		"self_url": selfURL,
	})
}

func writeJSON(resp *broute.Response, status int, v any) error {
	buf, err := json.Marshal(v)
	if err != nil {
		return err
	}

	if err := resp.SetStatus(status); err != nil {
		return err
	}

	if err := resp.SetHeader("Content-Type", "application/json"); err != nil {
		return err
	}

	return resp.Expand(buf)
}

func readAll(t *testing.T, r io.Reader) string {
	t.Helper()
	buf, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return string(buf)
}
