package host

import (
	"sort"
	"strings"
)

// deniedKeys are web server, session and display variables that must not
// leak into child processes.
var deniedKeys = map[string]struct{}{
	"argc":            {},
	"argv":            {},
	"DOCUMENT_URI":    {},
	"SERVER_SOFTWARE": {},
	"HTTPS":           {},
	"DOCUMENT_ROOT":   {},
	"QUERY_STRING":    {},
	"SERVER_PROTOCOL": {},
	"SESSION_MANAGER": {},
	"DISPLAY":         {},
	"WAYLAND_DISPLAY": {},
	"LOGNAME":         {},
	"USER":            {},
	"LANG":            {},
	"HOME":            {},
}

// deniedPrefixes cover CGI/request, debugger and desktop session contexts.
var deniedPrefixes = []string{
	"REQUEST_",
	"HTTP_",
	"SCRIPT_",
	"PATH_",
	"PHP_",
	"ORIG_",
	"REDIRECT_",
	"GATEWAY_",
	"CONTEXT_",
	"CONTENT_",
	"FCGI_",
	"XDEBUG_",
	"XDG_",
	"DBUS_",
	"GNOME_",
	"KDE_",
	"QT_",
	"SSH_",
	"LC_",
}

// IsDenied reports whether key must be stripped from an inherited
// environment.
func IsDenied(key string) bool {
	if _, ok := deniedKeys[key]; ok {
		return true
	}
	for _, prefix := range deniedPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

// Sanitize returns a copy of ambient without denied keys.
func Sanitize(ambient map[string]string) map[string]string {
	env := make(map[string]string, len(ambient))
	for k, v := range ambient {
		if IsDenied(k) {
			continue
		}
		env[k] = v
	}
	return env
}

// CleanEnv returns the sanitized ambient environment. The first call
// snapshots the environment; later calls return copies of that snapshot.
func (h *Host) CleanEnv() map[string]string {
	h.envOnce.Do(func() {
		h.env = Sanitize(h.Ambient())
	})
	return copyEnv(h.env)
}

// EnsurePath returns env with PATH copied from ambient when env lacks it.
// The input map is not modified.
func EnsurePath(env, ambient map[string]string) map[string]string {
	out := copyEnv(env)
	if _, ok := out["PATH"]; ok {
		return out
	}
	if path, ok := ambient["PATH"]; ok {
		out["PATH"] = path
	}
	return out
}

// MapFromEnviron converts KEY=VALUE entries into a map. Later duplicates
// win, matching os/exec.
func MapFromEnviron(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		env[k] = v
	}
	return env
}

// EnvironFromMap converts a map into sorted KEY=VALUE entries.
func EnvironFromMap(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

func copyEnv(env map[string]string) map[string]string {
	out := make(map[string]string, len(env)+1)
	for k, v := range env {
		out[k] = v
	}
	return out
}
