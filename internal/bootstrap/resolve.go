// Package bootstrap turns server manifests into config entries. A
// manifest source can be a local file, an HTTP(S) URL, or an install
// link carrying a base64 config payload; the payload itself may be
// JSON, TOML, or YAML.
package bootstrap

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/lydakis/mcpchat/internal/config"
	"github.com/lydakis/mcpchat/internal/httpheaders"
)

const fetchTimeout = 15 * time.Second

// ResolveOptions tunes Resolve. The fetch and read hooks exist for
// tests; nil means the real network and filesystem.
type ResolveOptions struct {
	// Name overrides the server name from the manifest, and is required
	// when the manifest defines an unnamed server.
	Name     string
	FetchURL func(ctx context.Context, source string) ([]byte, error)
	ReadFile func(path string) ([]byte, error)
}

// ResolvedServer is a named server definition ready to merge into the
// config file.
type ResolvedServer struct {
	Name   string
	Server config.ServerConfig
}

// SourceAccessError marks failures to fetch or read the manifest
// source, as opposed to a source that was retrieved but malformed.
type SourceAccessError struct {
	Err error
}

func (e *SourceAccessError) Error() string { return e.Err.Error() }
func (e *SourceAccessError) Unwrap() error { return e.Err }

// IsSourceAccessError reports whether err stems from fetching or
// reading the manifest source.
func IsSourceAccessError(err error) bool {
	var typed *SourceAccessError
	return errors.As(err, &typed)
}

// Resolve loads the manifest at source and selects one server from it.
func Resolve(ctx context.Context, source string, opts ResolveOptions) (ResolvedServer, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return ResolvedServer{}, fmt.Errorf("missing source")
	}

	payload, err := loadSource(ctx, source, opts)
	if err != nil {
		return ResolvedServer{}, err
	}

	set, err := parseManifest(payload)
	if err != nil {
		return ResolvedServer{}, fmt.Errorf("parsing %q: %w", source, err)
	}

	name, server, err := set.pick(opts.Name)
	if err != nil {
		return ResolvedServer{}, err
	}
	if err := validateResolved(name, server); err != nil {
		return ResolvedServer{}, err
	}
	return ResolvedServer{Name: name, Server: server}, nil
}

func loadSource(ctx context.Context, source string, opts ResolveOptions) ([]byte, error) {
	if payload, ok, err := installLinkPayload(source); ok {
		return payload, err
	}

	if isHTTPURL(source) {
		fetch := opts.FetchURL
		if fetch == nil {
			fetch = fetchURL
		}
		payload, err := fetch(ctx, source)
		if err != nil {
			return nil, &SourceAccessError{Err: fmt.Errorf("fetching %q: %w", source, err)}
		}
		return payload, nil
	}

	readFile := opts.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}
	payload, err := readFile(source)
	if err != nil {
		return nil, &SourceAccessError{Err: fmt.Errorf("reading %q: %w", source, err)}
	}
	return payload, nil
}

// installLinkPayload recognizes editor install links such as
// cursor://anysphere.cursor-deeplink/mcp/install?name=x&config=<b64>
// and returns the decoded config payload.
func installLinkPayload(source string) ([]byte, bool, error) {
	u, err := url.Parse(source)
	if err != nil {
		return nil, false, nil
	}
	raw := strings.TrimSpace(u.Query().Get("config"))
	if raw == "" {
		return nil, false, nil
	}
	isInstallPath := strings.Contains(strings.ToLower(u.Path), "/mcp/install")
	if !isInstallPath && !strings.EqualFold(u.Scheme, "cursor") {
		return nil, false, nil
	}

	payload, err := decodeBase64Payload(raw)
	if err != nil {
		return nil, true, fmt.Errorf("invalid install-link config payload: %w", err)
	}
	return payload, true, nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, "http") || strings.EqualFold(u.Scheme, "https")
}

// decodeBase64Payload tries the common base64 variants. URL query
// decoding turns '+' into spaces, so a space-bearing candidate gets a
// second chance with the '+' restored.
func decodeBase64Payload(raw string) ([]byte, error) {
	trimmed := strings.TrimSpace(raw)
	candidates := []string{trimmed}
	if strings.Contains(trimmed, " ") {
		candidates = append(candidates, strings.ReplaceAll(trimmed, " ", "+"))
	}

	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}

	var lastErr error
	for _, candidate := range candidates {
		for _, enc := range encodings {
			decoded, err := enc.DecodeString(candidate)
			if err == nil {
				return decoded, nil
			}
			lastErr = err
		}
	}
	return nil, lastErr
}

func fetchURL(ctx context.Context, source string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: fetchTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("unexpected HTTP status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// serverSet is the parsed manifest: either named servers (mcpServers /
// servers map) or a single bare server definition.
type serverSet struct {
	named   map[string]config.ServerConfig
	unnamed *config.ServerConfig
}

// parseManifest decodes payload as JSON, TOML, or YAML into a generic
// object tree and walks it with one shared decoder. JSON goes first
// since every JSON document is also valid YAML.
func parseManifest(payload []byte) (serverSet, error) {
	var root map[string]any

	var jsonRoot any
	if err := json.Unmarshal(payload, &jsonRoot); err == nil {
		obj, ok := jsonRoot.(map[string]any)
		if !ok {
			return serverSet{}, fmt.Errorf("manifest root must be an object")
		}
		root = obj
	} else if err := toml.Unmarshal(payload, &root); err != nil {
		var yamlRoot any
		if err := yaml.Unmarshal(payload, &yamlRoot); err != nil {
			return serverSet{}, fmt.Errorf("payload is not a JSON, TOML, or YAML server manifest")
		}
		obj, ok := yamlRoot.(map[string]any)
		if !ok {
			return serverSet{}, fmt.Errorf("manifest root must be an object")
		}
		root = obj
	}

	return serverSetFromObject(root)
}

func serverSetFromObject(root map[string]any) (serverSet, error) {
	for _, key := range []string{"mcpServers", "servers"} {
		raw, ok := root[key]
		if !ok {
			continue
		}
		named, err := decodeNamedServers(raw)
		if err != nil {
			return serverSet{}, err
		}
		return serverSet{named: named}, nil
	}

	if looksLikeServerObject(root) {
		server, err := decodeServer(root)
		if err != nil {
			return serverSet{}, err
		}
		return serverSet{unnamed: &server}, nil
	}

	// Bare {"name": {...}} maps without a wrapper key also occur.
	if named, err := decodeNamedServers(root); err == nil && len(named) > 0 {
		return serverSet{named: named}, nil
	}

	return serverSet{}, fmt.Errorf("manifest does not contain server definitions")
}

func decodeNamedServers(raw any) (map[string]config.ServerConfig, error) {
	root, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("server map must be an object")
	}

	servers := make(map[string]config.ServerConfig, len(root))
	for name, value := range root {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("server name cannot be empty")
		}
		obj, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("server %q definition must be an object", name)
		}
		server, err := decodeServer(obj)
		if err != nil {
			return nil, fmt.Errorf("server %q: %w", name, err)
		}
		servers[name] = server
	}
	return servers, nil
}

func decodeServer(raw map[string]any) (config.ServerConfig, error) {
	// Some registries nest the actual definition under "install".
	if installRaw, ok := raw["install"]; ok {
		installObj, ok := installRaw.(map[string]any)
		if !ok {
			return config.ServerConfig{}, fmt.Errorf("install must be an object")
		}
		raw = installObj
	}

	var srv config.ServerConfig
	var err error
	if srv.Command, err = stringField(raw, "command"); err != nil {
		return config.ServerConfig{}, err
	}
	if srv.Args, err = stringSliceField(raw, "args"); err != nil {
		return config.ServerConfig{}, err
	}
	if srv.Env, err = stringMapField(raw, "env"); err != nil {
		return config.ServerConfig{}, err
	}
	if srv.URL, err = stringField(raw, "url"); err != nil {
		return config.ServerConfig{}, err
	}
	if srv.Headers, err = stringMapField(raw, "headers"); err != nil {
		return config.ServerConfig{}, err
	}

	// Fetch-style manifests carry headers under requestInit; explicit
	// headers win on case-insensitive collisions.
	if initRaw, ok := raw["requestInit"].(map[string]any); ok {
		initHeaders, err := stringMapField(initRaw, "headers")
		if err != nil {
			return config.ServerConfig{}, fmt.Errorf("requestInit: %w", err)
		}
		srv.Headers = httpheaders.Merge(srv.Headers, initHeaders, false)
	}

	if err := checkDeclaredTransport(raw, srv); err != nil {
		return config.ServerConfig{}, err
	}
	return srv, nil
}

// checkDeclaredTransport validates an explicit "transport" field
// against the fields the manifest actually provides. Absent transport
// is fine; the command/url split decides on its own.
func checkDeclaredTransport(raw map[string]any, srv config.ServerConfig) error {
	value, ok := raw["transport"]
	if !ok {
		return nil
	}

	var first string
	switch typed := value.(type) {
	case string:
		first = typed
	case []any:
		if len(typed) == 0 {
			return fmt.Errorf("transport array cannot be empty")
		}
		text, ok := typed[0].(string)
		if !ok {
			return fmt.Errorf("transport array must contain strings")
		}
		first = text
	default:
		return fmt.Errorf("transport must be a string or string array")
	}

	normalized := strings.ToLower(strings.TrimSpace(first))
	normalized = strings.NewReplacer("_", "", "-", "").Replace(normalized)
	switch normalized {
	case "stdio":
		if strings.TrimSpace(srv.Command) == "" {
			return fmt.Errorf("transport %q requires command", first)
		}
	case "http", "https", "sse", "streamablehttp":
		if strings.TrimSpace(srv.URL) == "" {
			return fmt.Errorf("transport %q requires url", first)
		}
	default:
		return fmt.Errorf("unsupported transport %q", first)
	}
	return nil
}

func stringField(raw map[string]any, key string) (string, error) {
	value, ok := raw[key]
	if !ok {
		return "", nil
	}
	text, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	return strings.TrimSpace(text), nil
}

func stringSliceField(raw map[string]any, key string) ([]string, error) {
	value, ok := raw[key]
	if !ok {
		return nil, nil
	}
	items, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an array of strings", key)
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		text, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%s[%d] must be a string", key, i)
		}
		out = append(out, text)
	}
	return out, nil
}

func stringMapField(raw map[string]any, key string) (map[string]string, error) {
	value, ok := raw[key]
	if !ok {
		return nil, nil
	}
	items, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an object of strings", key)
	}
	out := make(map[string]string, len(items))
	for k, v := range items {
		text, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%s.%s must be a string", key, k)
		}
		out[k] = text
	}
	return out, nil
}

func looksLikeServerObject(raw map[string]any) bool {
	for _, key := range []string{"command", "args", "env", "url", "headers", "transport", "install"} {
		if _, ok := raw[key]; ok {
			return true
		}
	}
	return false
}

func (s serverSet) pick(requestedName string) (string, config.ServerConfig, error) {
	requestedName = strings.TrimSpace(requestedName)

	if len(s.named) > 0 {
		if requestedName != "" {
			if srv, ok := s.named[requestedName]; ok {
				return requestedName, srv, nil
			}
			if len(s.named) == 1 {
				for _, srv := range s.named {
					return requestedName, srv, nil
				}
			}
			return "", config.ServerConfig{}, fmt.Errorf("server %q not found in manifest (available: %s)",
				requestedName, strings.Join(sortedNames(s.named), ", "))
		}
		if len(s.named) == 1 {
			for name, srv := range s.named {
				return name, srv, nil
			}
		}
		return "", config.ServerConfig{}, fmt.Errorf("manifest includes multiple servers (%s); pass --name to select one",
			strings.Join(sortedNames(s.named), ", "))
	}

	if s.unnamed != nil {
		if requestedName == "" {
			return "", config.ServerConfig{}, fmt.Errorf("manifest defines an unnamed server; pass --name")
		}
		return requestedName, *s.unnamed, nil
	}

	return "", config.ServerConfig{}, fmt.Errorf("manifest does not include any servers")
}

func sortedNames(servers map[string]config.ServerConfig) []string {
	names := make([]string, 0, len(servers))
	for name := range servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func validateResolved(name string, server config.ServerConfig) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("server name cannot be empty")
	}
	return config.ValidateForCurrentEnv(&config.Config{
		Servers: map[string]config.ServerConfig{name: server},
	})
}
