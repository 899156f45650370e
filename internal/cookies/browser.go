package cookies

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// browserPriority is the fixed probe order used after the configured
// preference and the desktop default.
var browserPriority = []string{
	"zen", "firefox", "librewolf", "chrome", "chromium", "edge", "brave", "opera", "vivaldi",
}

// DetectBrowsers returns cookie extractors in probe order: the configured
// preference first, then the desktop default browser, then the fixed
// priority list. Unknown names are ignored.
func DetectBrowsers(preferred string) []Extractor {
	var out []Extractor
	for _, name := range probeOrder(preferred, defaultBrowser()) {
		if ex := newExtractor(name); ex != nil {
			out = append(out, ex)
		}
	}
	return out
}

func probeOrder(preferred, fallback string) []string {
	seen := make(map[string]bool)
	var order []string
	add := func(name string) {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] || !knownBrowser(name) {
			return
		}
		seen[name] = true
		order = append(order, name)
	}
	add(preferred)
	add(fallback)
	for _, b := range browserPriority {
		add(b)
	}
	return order
}

func knownBrowser(name string) bool {
	for _, b := range browserPriority {
		if b == name {
			return true
		}
	}
	return false
}

// defaultBrowser asks xdg-settings for the desktop default. Best effort:
// any failure just drops this step of the probe order.
func defaultBrowser() string {
	if runtime.GOOS != "linux" {
		return ""
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, "xdg-settings", "get", "default-web-browser").Output()
	if err != nil {
		return ""
	}
	desktop := strings.ToLower(strings.TrimSpace(string(out)))
	for _, b := range browserPriority {
		if strings.Contains(desktop, b) {
			return b
		}
	}
	return ""
}

func newExtractor(name string) Extractor {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	switch name {
	case "zen":
		// Zen stores Firefox-format profiles under ~/.zen.
		return &firefoxExtractor{name: "zen", roots: []string{
			filepath.Join(home, ".zen"),
		}}
	case "firefox":
		return &firefoxExtractor{name: "firefox", roots: []string{
			filepath.Join(home, ".mozilla", "firefox"),
			filepath.Join(home, "snap", "firefox", "common", ".mozilla", "firefox"),
			filepath.Join(home, ".var", "app", "org.mozilla.firefox", ".mozilla", "firefox"),
			filepath.Join(home, "Library", "Application Support", "Firefox", "Profiles"),
		}}
	case "librewolf":
		return &firefoxExtractor{name: "librewolf", roots: []string{
			filepath.Join(home, ".librewolf"),
			filepath.Join(home, ".var", "app", "io.gitlab.librewolf-community", ".librewolf"),
			filepath.Join(home, "Library", "Application Support", "librewolf", "Profiles"),
		}}
	case "chrome":
		return &chromiumExtractor{name: "chrome", paths: chromiumPaths(home,
			filepath.Join(".config", "google-chrome"),
			filepath.Join("Library", "Application Support", "Google", "Chrome"),
		)}
	case "chromium":
		return &chromiumExtractor{name: "chromium", paths: chromiumPaths(home,
			filepath.Join(".config", "chromium"),
			filepath.Join("Library", "Application Support", "Chromium"),
		)}
	case "edge":
		return &chromiumExtractor{name: "edge", paths: chromiumPaths(home,
			filepath.Join(".config", "microsoft-edge"),
			filepath.Join("Library", "Application Support", "Microsoft Edge"),
		)}
	case "brave":
		return &chromiumExtractor{name: "brave", paths: chromiumPaths(home,
			filepath.Join(".config", "BraveSoftware", "Brave-Browser"),
			filepath.Join("Library", "Application Support", "BraveSoftware", "Brave-Browser"),
		)}
	case "opera":
		return &chromiumExtractor{name: "opera", paths: chromiumPaths(home,
			filepath.Join(".config", "opera"),
			filepath.Join("Library", "Application Support", "com.operasoftware.Opera"),
		)}
	case "vivaldi":
		return &chromiumExtractor{name: "vivaldi", paths: chromiumPaths(home,
			filepath.Join(".config", "vivaldi"),
			filepath.Join("Library", "Application Support", "Vivaldi"),
		)}
	}
	return nil
}

// chromiumPaths expands config roots into Cookies DB candidates. Newer
// Chromium keeps the DB under Default/Network, older under Default.
func chromiumPaths(home string, roots ...string) []string {
	var paths []string
	for _, root := range roots {
		base := filepath.Join(home, root)
		paths = append(paths,
			filepath.Join(base, "Default", "Network", "Cookies"),
			filepath.Join(base, "Default", "Cookies"),
		)
	}
	return paths
}
