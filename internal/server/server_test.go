package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-dynaform/pkg/form"
	"github.com/goliatone/go-dynaform/pkg/formconfig"
	"github.com/goliatone/go-dynaform/pkg/model"
	"github.com/goliatone/go-dynaform/pkg/render"
	"github.com/goliatone/go-dynaform/pkg/validation"
)

type captureSubmitter struct {
	values map[string]string
	err    error
}

func (c *captureSubmitter) Submit(_ context.Context, _ model.FormModel, values map[string]string) error {
	c.values = values
	return c.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, options ...Option) (http.Handler, *captureSubmitter) {
	t.Helper()
	sub := &captureSubmitter{}
	base := []Option{WithLogger(quietLogger()), WithSubmitter(sub)}
	srv, err := New(formconfig.MustDefault(), append(base, options...)...)
	require.NoError(t, err)
	return srv.Handler(), sub
}

func validValues() map[string]any {
	return map[string]any{
		"firstName":        "Ada",
		"lastName":         "Lovelace",
		"email":            "ada@example.com",
		"phone":            "+15551234567",
		"age":              json.Number("36"),
		"address":          "12 St James's Square",
		"city":             "London",
		"zipCode":          "12345",
		"department":       "Engineering",
		"emergencyContact": "5551234567",
	}
}

func do(t *testing.T, h http.Handler, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGetPage(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, `data-validate-url="/api/validate"`)
	assert.Contains(t, body, `href="/assets/dynaform.css"`)
	assert.Contains(t, body, `name="firstName"`)
}

func TestPostPage_InvalidRerendersWithErrors(t *testing.T) {
	h, sub := newTestServer(t)

	posted := url.Values{"firstName": {"Ada"}, "email": {"not-an-email"}}
	rec := do(t, h, http.MethodPost, "/", "application/x-www-form-urlencoded", posted.Encode())

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Please enter a valid email address.")
	assert.Contains(t, body, `value="not-an-email"`)
	assert.Contains(t, body, "Please fix the errors in the form")
	assert.Nil(t, sub.values)
}

func TestPostPage_SuccessShowsNotice(t *testing.T) {
	h, sub := newTestServer(t)

	values := url.Values{}
	for name, v := range validValues() {
		values.Set(name, toString(v))
	}
	rec := do(t, h, http.MethodPost, "/", "application/x-www-form-urlencoded", values.Encode())

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Form submitted successfully!")
	assert.Equal(t, "Ada", sub.values["firstName"])
	assert.NotContains(t, rec.Body.String(), `value="Ada"`)
}

func TestPostPage_SubmitterFailure(t *testing.T) {
	h, sub := newTestServer(t)
	sub.err = errors.New("backend unavailable")

	values := url.Values{}
	for name, v := range validValues() {
		values.Set(name, toString(v))
	}
	rec := do(t, h, http.MethodPost, "/", "application/x-www-form-urlencoded", values.Encode())

	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "backend unavailable")
	assert.Contains(t, rec.Body.String(), `value="Ada"`)
}

func TestValidateEndpoint(t *testing.T) {
	tests := []struct {
		name    string
		timing  form.Timing
		body    string
		want    form.Feedback
		wantErr int
	}{
		{
			name:   "change shows immediately",
			timing: form.OnChange,
			body:   `{"name":"email","value":"nope","event":"change"}`,
			want:   form.Feedback{Field: "email", Error: "Please enter a valid email address.", Visible: true},
		},
		{
			name:   "blur timing hides untouched change",
			timing: form.OnBlur,
			body:   `{"name":"email","value":"nope","event":"change"}`,
			want:   form.Feedback{Field: "email"},
		},
		{
			name:   "blur touches and shows",
			timing: form.OnBlur,
			body:   `{"name":"email","value":"nope","event":"blur"}`,
			want:   form.Feedback{Field: "email", Error: "Please enter a valid email address.", Visible: true, Touched: true},
		},
		{
			name:   "touched change shows",
			timing: form.OnBlur,
			body:   `{"name":"age","value":"17","event":"change","touched":true}`,
			want:   form.Feedback{Field: "age", Error: "Age must be at least 18.", Visible: true, Touched: true},
		},
		{
			name:    "unknown field",
			timing:  form.OnChange,
			body:    `{"name":"ghost","value":"x"}`,
			wantErr: http.StatusNotFound,
		},
		{
			name:    "bad event",
			timing:  form.OnChange,
			body:    `{"name":"email","value":"x","event":"hover"}`,
			wantErr: http.StatusBadRequest,
		},
		{
			name:    "malformed body",
			timing:  form.OnChange,
			body:    `{`,
			wantErr: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestServer(t, WithTiming(tt.timing))
			rec := do(t, h, http.MethodPost, PathValidate, "application/json", tt.body)

			if tt.wantErr != 0 {
				assert.Equal(t, tt.wantErr, rec.Code)
				assert.Contains(t, rec.Body.String(), `"error"`)
				return
			}
			require.Equal(t, http.StatusOK, rec.Code)
			var got form.Feedback
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubmitEndpoint(t *testing.T) {
	h, sub := newTestServer(t)

	body, err := json.Marshal(validValues())
	require.NoError(t, err)
	rec := do(t, h, http.MethodPost, PathSubmit, "application/json", string(body))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.Equal(t, "36", sub.values["age"])
	assert.Equal(t, "", sub.values["bio"])
}

func TestSubmitEndpoint_Invalid(t *testing.T) {
	h, sub := newTestServer(t)

	values := validValues()
	values["age"] = json.Number("12")
	values["zipCode"] = "1234"
	body, err := json.Marshal(values)
	require.NoError(t, err)
	rec := do(t, h, http.MethodPost, PathSubmit, "application/json", string(body))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"errors":{"age":"Age must be at least 18.","zipCode":"Zip Code must be 12345 or 12345-6789."}}`, rec.Body.String())
	assert.Nil(t, sub.values)
}

func TestSubmitEndpoint_RejectsUnknownOption(t *testing.T) {
	h, sub := newTestServer(t)

	values := validValues()
	values["department"] = "Legal Dept of Evil"
	body, err := json.Marshal(values)
	require.NoError(t, err)
	rec := do(t, h, http.MethodPost, PathSubmit, "application/json", string(body))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"errors":{"department":"Please select a valid Department."}}`, rec.Body.String())
	assert.Nil(t, sub.values)

	rec = do(t, h, http.MethodPost, PathValidate, "application/json", `{"name":"department","value":"HR","event":"change"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please select a valid Department.")
}

func TestSubmitEndpoint_CustomValidatorAcceptsAnyOption(t *testing.T) {
	h, sub := newTestServer(t, WithValidator(validation.New()))

	values := validValues()
	values["department"] = "HR"
	body, err := json.Marshal(values)
	require.NoError(t, err)
	rec := do(t, h, http.MethodPost, PathSubmit, "application/json", string(body))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HR", sub.values["department"])
}

func TestSubmitEndpoint_BadPayload(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodPost, PathSubmit, "application/json", `{"firstName":["a"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, PathSubmit, "application/json", `[]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReadOnlyEndpoints(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodGet, PathHealth, "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, PathForm, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got model.FormModel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, formconfig.MustDefault().Names(), got.Names())

	rec = do(t, h, http.MethodGet, PathOpenAPI, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"/api/submit"`)
	assert.Contains(t, rec.Body.String(), `"submit-evil-manager"`)

	rec = do(t, h, http.MethodGet, "/assets/dynaform.js", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "data-validate-url")
}

func TestNew_RequiresHTMLRenderer(t *testing.T) {
	_, err := New(formconfig.MustDefault(), WithRenderers(render.NewRegistry()))
	assert.ErrorIs(t, err, ErrNoRenderer)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	srv, err := New(formconfig.MustDefault(), WithLogger(quietLogger()), WithSubmitDelay(0))
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + PathHealth)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func toString(v any) string {
	switch tv := v.(type) {
	case json.Number:
		return tv.String()
	case string:
		return tv
	default:
		return ""
	}
}
