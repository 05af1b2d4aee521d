package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"placemap/internal/backend"
	"placemap/internal/config"
	"placemap/internal/engine"
	"placemap/internal/favorites"
	"placemap/internal/geocode"
	"placemap/internal/geoloc"
	"placemap/internal/mapview"
	"placemap/internal/models"
	"placemap/internal/search"
	"placemap/internal/state"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	config, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	ctx := context.Background()

	api := backend.NewClient(config.BackendBaseURL, log.Logger)
	clientID, err := identify(ctx, api)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot establish client identity")
	}
	session := state.NewSession(clientID)

	provider, err := buildProvider(config)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot build geocode provider")
	}

	surface := newConsoleSurface()

	searcher := search.NewSearcher(provider, log.Logger,
		search.WithDebounce(time.Duration(config.DebounceMs)*time.Millisecond),
		search.WithSuggestionListener(surface.showSuggestions),
	)

	collection := favorites.NewCollection(api, session, log.Logger)

	eng := engine.New(engine.Deps{
		Searcher:  searcher,
		Favorites: collection,
		Surface:   surface,
		Session:   session,
		History:   api,
		Locator:   geoloc.NewIPLocator(config.GeolocateURL, log.Logger),
		Logger:    log.Logger,
	})

	// The console map is ready as soon as it exists.
	surface.render()

	if err := eng.Start(ctx); err != nil {
		log.Warn().Err(err).Msg("initial favorites load failed")
	}

	runShell(ctx, eng, surface, api)
}

func buildProvider(cfg config.Config) (geocode.Provider, error) {
	switch cfg.GeocodeProvider {
	case "google":
		if cfg.GoogleAPIKey == "" {
			return nil, fmt.Errorf("GOOGLE_API_KEY is required for the google provider")
		}
		return geocode.NewGoogleProvider(cfg.GoogleAPIKey, log.Logger), nil
	case "nominatim":
		return geocode.NewNominatimProvider(cfg.NominatimServer, log.Logger), nil
	default:
		return nil, fmt.Errorf("unknown geocode provider %q", cfg.GeocodeProvider)
	}
}

// identify exchanges the persisted client id (if any) for the authoritative
// one and stores it for the next run.
func identify(ctx context.Context, api *backend.Client) (string, error) {
	path := clientIDPath()
	existing := ""
	if data, err := os.ReadFile(path); err == nil {
		existing = strings.TrimSpace(string(data))
	}

	clientID, err := api.Identify(ctx, existing)
	if err != nil {
		return "", err
	}
	if clientID != existing {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
			_ = os.WriteFile(path, []byte(clientID), 0o600)
		}
	}
	return clientID, nil
}

func clientIDPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".placemap_client"
	}
	return filepath.Join(home, ".placemap", "client_id")
}

func runShell(ctx context.Context, eng *engine.Engine, surface *consoleSurface, api *backend.Client) {
	fmt.Println("placemap. Type to search; :help lists commands.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()

		if !strings.HasPrefix(line, ":") {
			eng.Searcher.Input(ctx, line)
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case ":help":
			fmt.Println("  <text>        search places (debounced)")
			fmt.Println("  :pick <n>     select suggestion n")
			fmt.Println("  :fav          toggle favorite on the selection")
			fmt.Println("  :list         list favorites")
			fmt.Println("  :marker <n>   click marker n")
			fmt.Println("  :history      show visited history")
			fmt.Println("  :weather      weather at the selection")
			fmt.Println("  :clear        clear the selection")
			fmt.Println("  :quit         exit")
		case ":pick":
			pick(ctx, eng, fields)
		case ":fav":
			toggleFavorite(ctx, eng)
		case ":list":
			for i, item := range eng.Favorites.Items() {
				name := "-"
				if item.CategoryName != nil {
					name = *item.CategoryName
				}
				fmt.Printf("  %d. %s (%s, %s) category=%s\n", i+1, item.PlaceDesc, item.Latitude, item.Longitude, name)
			}
		case ":marker":
			if len(fields) == 2 {
				if n, err := strconv.Atoi(fields[1]); err == nil {
					surface.clickMarker(n)
				}
			}
		case ":history":
			page, err := eng.VisitedHistory(ctx, 0, 10)
			if err != nil {
				fmt.Printf("  history unavailable: %v\n", err)
				continue
			}
			for _, item := range page.Content {
				fmt.Printf("  %s (%s, %s)\n", item.PlaceDesc, item.Latitude, item.Longitude)
			}
		case ":weather":
			showWeather(ctx, eng, api)
		case ":clear":
			eng.ClearSelection()
		case ":quit":
			return
		default:
			fmt.Printf("  unknown command %s\n", fields[0])
		}
	}
}

func pick(ctx context.Context, eng *engine.Engine, fields []string) {
	if len(fields) != 2 {
		fmt.Println("  usage: :pick <n>")
		return
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		fmt.Println("  usage: :pick <n>")
		return
	}
	suggestions := eng.Searcher.Suggestions()
	if n < 1 || n > len(suggestions) {
		fmt.Println("  no such suggestion")
		return
	}

	details, err := eng.SelectSuggestion(ctx, suggestions[n-1])
	if err != nil {
		fmt.Printf("  could not resolve place: %v\n", err)
		return
	}
	fmt.Printf("  selected %s (%s)\n", details.Name, details.Address)
}

func toggleFavorite(ctx context.Context, eng *engine.Engine) {
	wasFavorite := eng.IsSelectedFavorite()
	loc, err := eng.ToggleFavorite(ctx)
	if err != nil {
		fmt.Printf("  favorite not saved: %v\n", err)
		return
	}
	if loc == nil {
		fmt.Println("  nothing selected")
		return
	}
	if wasFavorite {
		fmt.Printf("  removed %s from favorites\n", loc.PlaceDesc)
	} else {
		fmt.Printf("  added %s to favorites\n", loc.PlaceDesc)
		if loc.Message != "" {
			fmt.Printf("  %s\n", loc.Message)
		}
	}
}

func showWeather(ctx context.Context, eng *engine.Engine, api *backend.Client) {
	selected := eng.Selection.Current()
	if selected == nil {
		fmt.Println("  nothing selected")
		return
	}
	lat := strconv.FormatFloat(selected.Latitude, 'f', -1, 64)
	lng := strconv.FormatFloat(selected.Longitude, 'f', -1, 64)

	resp, err := api.Weather(ctx, lat, lng)
	if err != nil {
		fmt.Printf("  weather unavailable: %v\n", err)
		return
	}
	if resp.Weather == nil {
		fmt.Println("  weather unavailable")
		return
	}
	fmt.Printf("  %s, %.1f C, wind %.1f km/h\n", resp.Weather.Description, resp.Weather.TemperatureC, resp.Weather.WindspeedKmh)
}

// consoleSurface renders map state as terminal output. It satisfies the map
// capability with numbered markers so shell commands can click them.
type consoleSurface struct {
	mu        sync.Mutex
	rendered  bool
	onCamera  []func()
	onPOI     []func(string)
	markers   []*consoleMarker
	centerLat float64
	centerLng float64
	zoom      int
}

type consoleMarker struct {
	title   string
	lat     float64
	lng     float64
	onClick func()
}

func newConsoleSurface() *consoleSurface {
	return &consoleSurface{}
}

// render marks the surface ready and fires the first camera notification.
func (s *consoleSurface) render() {
	s.mu.Lock()
	if s.rendered {
		s.mu.Unlock()
		return
	}
	s.rendered = true
	listeners := append([]func(){}, s.onCamera...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

func (s *consoleSurface) SetCenter(lat, lng float64) {
	s.mu.Lock()
	s.centerLat, s.centerLng = lat, lng
	listeners := append([]func(){}, s.onCamera...)
	s.mu.Unlock()

	fmt.Printf("  [map] center %.4f, %.4f\n", lat, lng)
	for _, fn := range listeners {
		fn()
	}
}

func (s *consoleSurface) SetZoom(level int) {
	s.mu.Lock()
	s.zoom = level
	s.mu.Unlock()
	fmt.Printf("  [map] zoom %d\n", level)
}

func (s *consoleSurface) FitBounds(bounds mapview.BoundingBox, insets mapview.Insets) {
	fmt.Printf("  [map] fit %.4f..%.4f, %.4f..%.4f\n", bounds.South, bounds.North, bounds.West, bounds.East)
}

func (s *consoleSurface) CreateMarker(lat, lng float64, title string) mapview.Marker {
	m := &consoleMarker{title: title, lat: lat, lng: lng}
	s.mu.Lock()
	s.markers = append(s.markers, m)
	n := len(s.markers)
	s.mu.Unlock()
	fmt.Printf("  [map] marker %d: %s\n", n, title)
	return m
}

func (s *consoleSurface) DestroyMarker(m mapview.Marker) {
	cm, ok := m.(*consoleMarker)
	if !ok {
		return
	}
	s.mu.Lock()
	for i, existing := range s.markers {
		if existing == cm {
			s.markers = append(s.markers[:i], s.markers[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
}

func (s *consoleSurface) OnMarkerClick(m mapview.Marker, fn func()) {
	if cm, ok := m.(*consoleMarker); ok {
		cm.onClick = fn
	}
}

func (s *consoleSurface) OnCameraChanged(fn func()) {
	s.mu.Lock()
	s.onCamera = append(s.onCamera, fn)
	alreadyRendered := s.rendered
	s.mu.Unlock()

	if alreadyRendered {
		fn()
	}
}

func (s *consoleSurface) OnPOIClick(fn func(placeID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onPOI = append(s.onPOI, fn)
}

func (s *consoleSurface) clickMarker(n int) {
	s.mu.Lock()
	var m *consoleMarker
	if n >= 1 && n <= len(s.markers) {
		m = s.markers[n-1]
	}
	s.mu.Unlock()

	if m == nil {
		fmt.Println("  no such marker")
		return
	}
	if m.onClick != nil {
		m.onClick()
	}
}

func (s *consoleSurface) showSuggestions(items []models.Suggestion) {
	if len(items) == 0 {
		return
	}
	fmt.Println()
	for i, sg := range items {
		fmt.Printf("  %d. %s\n", i+1, sg.Description)
	}
	fmt.Print("> ")
}
