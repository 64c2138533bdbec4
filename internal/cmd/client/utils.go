package client

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	cfgpkg "github.com/malbaugh/ksuid-ts/internal/config"
	"github.com/malbaugh/ksuid-ts/internal/runtime"
	"github.com/malbaugh/ksuid-ts/pkg/ksuid"
)

// httpGetJSON fetches url and decodes the JSON response into out.
func httpGetJSON(url string, out any) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		return apiError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// httpPostJSON posts body as JSON to url and decodes the response into out.
func httpPostJSON(url string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		return apiError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// apiError surfaces the server's error message when the body carries one.
func apiError(resp *http.Response) error {
	var e struct {
		Error string `json:"error"`
	}
	if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Error != "" {
		return fmt.Errorf("%s: %s", resp.Status, e.Error)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return fmt.Errorf("http error: %s", resp.Status)
}

// withLocalRuntime opens the store under dataDir directly, without a server.
// The store lives in the same `store` subdirectory the server uses, so the
// flag takes the server's --data-dir value as-is.
func withLocalRuntime(dataDir string, fn func(*runtime.Runtime) error) error {
	cfg := cfgpkg.Default()
	cfgpkg.FromEnv(&cfg)
	cfg.DataDir = filepath.Join(dataDir, "store")
	rt, err := runtime.Open(runtime.Options{Config: cfg})
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()
	return fn(rt)
}

// idDetails is the JSON shape printed by `inspect` and `generate -f inspect`.
type idDetails struct {
	ID        string `json:"id"`
	Raw       string `json:"raw"`
	Time      string `json:"time"`
	Timestamp uint32 `json:"timestamp"`
	Payload   string `json:"payload"`
}

func detailsOf(id ksuid.KSUID) idDetails {
	return idDetails{
		ID:        id.String(),
		Raw:       hex.EncodeToString(id.Bytes()),
		Time:      id.Time().UTC().Format(time.RFC3339),
		Timestamp: id.Timestamp(),
		Payload:   hex.EncodeToString(id.Payload()),
	}
}

// templateData is the value a `generate -f template` template renders with.
type templateData struct {
	String    string
	Raw       string
	Time      string
	Timestamp uint32
	Payload   string
}

func templateDataOf(id ksuid.KSUID) templateData {
	return templateData{
		String:    id.String(),
		Raw:       hex.EncodeToString(id.Bytes()),
		Time:      id.Time().UTC().Format(time.RFC3339),
		Timestamp: id.Timestamp(),
		Payload:   hex.EncodeToString(id.Payload()),
	}
}
