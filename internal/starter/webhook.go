package starter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/dailycal/internal/constants"
	"github.com/julianstephens/dailycal/internal/logger"
	"github.com/julianstephens/dailycal/internal/models"
)

var (
	userConfigDirFunc = os.UserConfigDir
	findProcessFunc   = ps.FindProcess
)

var (
	ErrHostNotRunning    = errors.New("game host is not running")
	ErrMalformedLockfile = errors.New("game host lockfile is malformed")
)

// Webhook posts start requests to a game host over HTTP. With URL empty the
// host is discovered through its lockfile.
type Webhook struct {
	URL    string
	Secret string
	Client *http.Client
}

func NewWebhook(url, secret string) *Webhook {
	return &Webhook{
		URL:    url,
		Secret: secret,
		Client: &http.Client{Timeout: constants.StarterTimeout},
	}
}

func (w *Webhook) Start(ctx context.Context, req models.StartRequest) error {
	url, secret := w.URL, w.Secret
	if url == "" {
		dir, err := HostConfigDir()
		if err != nil {
			return err
		}
		port, lockSecret, err := findHost(filepath.Join(dir, constants.GameHostLockfileName))
		if err != nil {
			return err
		}
		url = "http://127.0.0.1:" + port
		if secret == "" {
			secret = lockSecret
		}
	}

	if err := w.post(ctx, url, secret, req); err != nil {
		return err
	}
	logger.Info("start request delivered", "url", url, "session", req.SessionID, "route", req.Route)
	return nil
}

// HostConfigDir returns the directory holding the game host lockfile. The
// host may point it elsewhere with lockfile_dir in its settings.json.
func HostConfigDir() (string, error) {
	configDir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}

	hostDir := filepath.Join(configDir, constants.GameHostIdentifier)

	data, err := os.ReadFile(filepath.Join(hostDir, "settings.json"))
	if err != nil {
		return hostDir, nil
	}
	var settings struct {
		Settings struct {
			LockfileDir *string `json:"lockfile_dir"`
		} `json:"settings"`
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		logger.Warn("ignoring unreadable game host settings", "error", err)
		return hostDir, nil
	}
	if dir := settings.Settings.LockfileDir; dir != nil && *dir != "" {
		return *dir, nil
	}
	return hostDir, nil
}

// findHost reads a port|pid|secret lockfile and checks the pid belongs to a
// running game host.
func findHost(lockfilePath string) (port, secret string, err error) {
	content, err := os.ReadFile(lockfilePath)
	if err != nil {
		return "", "", ErrHostNotRunning
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 3 {
		return "", "", ErrMalformedLockfile
	}

	port = strings.TrimSpace(parts[0])
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return "", "", fmt.Errorf("%w: invalid port %q", ErrMalformedLockfile, port)
	}
	if portNum < 1 || portNum > 65535 {
		return "", "", fmt.Errorf("%w: port %d outside 1-65535", ErrMalformedLockfile, portNum)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return "", "", fmt.Errorf("%w: invalid pid", ErrMalformedLockfile)
	}

	secret = strings.TrimSpace(parts[2])
	if secret == "" {
		return "", "", fmt.Errorf("%w: empty secret", ErrMalformedLockfile)
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return "", "", ErrHostNotRunning
	}
	if !strings.HasPrefix(process.Executable(), constants.GameHostExecutable) {
		return "", "", fmt.Errorf("%w: pid %d is %s", ErrHostNotRunning, pid, process.Executable())
	}

	return port, secret, nil
}

func (w *Webhook) post(ctx context.Context, url, secret string, payload models.StartRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set(constants.StarterSecretHeader, secret)
	}

	client := w.Client
	if client == nil {
		client = &http.Client{Timeout: constants.StarterTimeout}
	}
	res, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("post start request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode/100 == 2 {
		return nil
	}

	msg, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return fmt.Errorf("start request failed with status %d: %s", res.StatusCode, strings.TrimSpace(string(msg)))
}
