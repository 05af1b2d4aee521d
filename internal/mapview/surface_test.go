package mapview

import "sync"

// fakeSurface records every command it receives and lets tests fire camera
// and marker events.
type fakeSurface struct {
	mu sync.Mutex

	centers []struct{ lat, lng float64 }
	zooms   []int
	fits    []struct {
		bounds BoundingBox
		insets Insets
	}

	nextID    int
	live      map[int]*fakeMarker
	destroyed int

	cameraListeners []func()
	poiListeners    []func(string)

	// onCreate, when set, runs after each CreateMarker. Tests use it to
	// trigger reentrant rebuilds.
	onCreate func()
}

type fakeMarker struct {
	id      int
	lat     float64
	lng     float64
	title   string
	onClick func()
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{live: make(map[int]*fakeMarker)}
}

func (f *fakeSurface) SetCenter(lat, lng float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.centers = append(f.centers, struct{ lat, lng float64 }{lat, lng})
}

func (f *fakeSurface) SetZoom(level int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.zooms = append(f.zooms, level)
}

func (f *fakeSurface) FitBounds(bounds BoundingBox, insets Insets) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fits = append(f.fits, struct {
		bounds BoundingBox
		insets Insets
	}{bounds, insets})
}

func (f *fakeSurface) CreateMarker(lat, lng float64, title string) Marker {
	f.mu.Lock()
	f.nextID++
	m := &fakeMarker{id: f.nextID, lat: lat, lng: lng, title: title}
	f.live[m.id] = m
	hook := f.onCreate
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return m
}

func (f *fakeSurface) DestroyMarker(m Marker) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if fm, ok := m.(*fakeMarker); ok {
		delete(f.live, fm.id)
		f.destroyed++
	}
}

func (f *fakeSurface) OnMarkerClick(m Marker, fn func()) {
	if fm, ok := m.(*fakeMarker); ok {
		fm.onClick = fn
	}
}

func (f *fakeSurface) OnCameraChanged(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cameraListeners = append(f.cameraListeners, fn)
}

func (f *fakeSurface) OnPOIClick(fn func(placeID string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.poiListeners = append(f.poiListeners, fn)
}

// fireCameraChanged simulates a camera movement event from the surface.
func (f *fakeSurface) fireCameraChanged() {
	f.mu.Lock()
	listeners := append([]func(){}, f.cameraListeners...)
	f.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// firePOIClick simulates a click on a base-map point of interest.
func (f *fakeSurface) firePOIClick(placeID string) {
	f.mu.Lock()
	listeners := append([]func(string){}, f.poiListeners...)
	f.mu.Unlock()
	for _, fn := range listeners {
		fn(placeID)
	}
}

// clickMarker simulates a user click on the marker with the given title.
func (f *fakeSurface) clickMarker(title string) bool {
	f.mu.Lock()
	var target *fakeMarker
	for _, m := range f.live {
		if m.title == title {
			target = m
			break
		}
	}
	f.mu.Unlock()

	if target == nil || target.onClick == nil {
		return false
	}
	target.onClick()
	return true
}

func (f *fakeSurface) liveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.live)
}

func (f *fakeSurface) lastCenter() (float64, float64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.centers) == 0 {
		return 0, 0, false
	}
	last := f.centers[len(f.centers)-1]
	return last.lat, last.lng, true
}

func (f *fakeSurface) lastZoom() (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.zooms) == 0 {
		return 0, false
	}
	return f.zooms[len(f.zooms)-1], true
}
