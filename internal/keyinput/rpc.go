package keyinput

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"maple-bot"
)

// Rpc is the remote key-injection backend (§6.2): a thin JSON client with
// no corpus library fit, so it is plain net/http (justified in
// DESIGN.md). It tracks its own down-key bitmap via agent.DownKeyTracker
// and rejects send-down on an already-down key / send-up on an
// already-up key exactly as §5/§6.2 requires.
type Rpc struct {
	BaseURL string
	Client  *http.Client
	tracker *agent.DownKeyTracker
}

func NewRpc(baseURL string) *Rpc {
	return &Rpc{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 2 * time.Second},
		tracker: agent.NewDownKeyTracker(),
	}
}

type rpcKeyRequest struct {
	Key    string `json:"key"`
	Action string `json:"action"`
}

func (r *Rpc) post(action string, k agent.KeyKind) error {
	name := keyName(k)
	if name == "" {
		return nil
	}
	body, err := json.Marshal(rpcKeyRequest{Key: name, Action: action})
	if err != nil {
		return err
	}
	resp, err := r.Client.Post(r.BaseURL+"/key", "application/json", bytes.NewReader(body))
	if err != nil {
		// Key-send failures over RPC are logged and ignored per §7
		// "log and continue; no state change".
		agent.LogWarn("keyinput: rpc %s %s failed: %v", action, name, err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("keyinput: rpc status %d", resp.StatusCode)
	}
	return nil
}

func (r *Rpc) Send(k agent.KeyKind) error {
	return r.post("tap", k)
}

func (r *Rpc) SendDown(k agent.KeyKind) error {
	if r.tracker.MarkDown(k) {
		return nil
	}
	return r.post("down", k)
}

func (r *Rpc) SendUp(k agent.KeyKind) error {
	if r.tracker.MarkUp(k) {
		return nil
	}
	return r.post("up", k)
}

func (r *Rpc) SendClickToFocus() error {
	resp, err := r.Client.Post(r.BaseURL+"/click-to-focus", "application/json", nil)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	return nil
}
