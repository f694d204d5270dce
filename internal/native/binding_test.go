package native_test

import (
	"osrm-route-service/internal/domain"
	"osrm-route-service/internal/native"
	"osrm-route-service/internal/native/nativetest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	paris     = domain.Point{Latitude: 48.8566, Longitude: 2.3522}
	marseille = domain.Point{Latitude: 43.2965, Longitude: 5.3698}
	lyon      = domain.Point{Latitude: 45.7640, Longitude: 4.8357}
)

func openFake(t *testing.T, lib *nativetest.Library) *native.Binding {
	t.Helper()
	b, err := native.Open(lib, "/data/france.osrm", "MLD")
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestOpenNilHandleIsInitialization(t *testing.T) {
	lib := nativetest.New()
	lib.CreateFunc = func(string, string) bool { return false }

	b, err := native.Open(lib, "/does/not/exist", "MLD")
	require.Nil(t, b)
	require.ErrorIs(t, err, domain.ErrInitialization)
	assert.Equal(t, 0, lib.Stats().LiveHandles)
}

func TestOpenRejectsNULBeforeCreate(t *testing.T) {
	created := false
	lib := nativetest.New()
	lib.CreateFunc = func(string, string) bool { created = true; return true }

	_, err := native.Open(lib, "/data/fr\x00ance", "MLD")
	require.ErrorIs(t, err, domain.ErrInvalidPath)

	_, err = native.Open(lib, "/data/france", "M\x00LD")
	require.ErrorIs(t, err, domain.ErrInvalidPath)

	assert.False(t, created, "no string with NUL may reach the engine")
}

func TestCloseDestroysExactlyOnce(t *testing.T) {
	lib := nativetest.New()
	b, err := native.Open(lib, "/data/france.osrm", "CH")
	require.NoError(t, err)

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	s := lib.Stats()
	assert.Equal(t, 1, s.Created)
	assert.Equal(t, 1, s.Destroyed)
	assert.Equal(t, 0, s.BadDestroys)
	assert.Equal(t, 0, s.LiveHandles)
}

func TestQueryAfterCloseNeverReachesEngine(t *testing.T) {
	lib := nativetest.New()
	b, err := native.Open(lib, "/data/france.osrm", "MLD")
	require.NoError(t, err)
	require.NoError(t, b.Close())

	_, err = b.Route([]domain.Point{paris, lyon})
	require.ErrorIs(t, err, domain.ErrFFI)
	assert.Contains(t, err.Error(), "instance closed")
	assert.Empty(t, lib.Calls())
}

func TestTableFlattensLongitudeFirst(t *testing.T) {
	lib := nativetest.New()
	b := openFake(t, lib)

	_, err := b.Table([]domain.Point{paris, marseille, lyon}, []int{0}, []int{1, 2})
	require.NoError(t, err)

	calls := lib.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "table", calls[0].Op)
	assert.Equal(t, []float64{2.3522, 48.8566, 5.3698, 43.2965, 4.8357, 45.7640}, calls[0].Coords)
	assert.Equal(t, []int{0}, calls[0].Sources)
	assert.Equal(t, []int{1, 2}, calls[0].Destinations)
}

func TestResponseProtocol(t *testing.T) {
	tests := []struct {
		name      string
		resp      nativetest.Response
		wantText  string
		wantErr   bool
		wantMsg   string
		wantFrees int
	}{
		{
			name:      "success returns payload",
			resp:      nativetest.OK(`{"code":"Ok"}`),
			wantText:  `{"code":"Ok"}`,
			wantFrees: 1,
		},
		{
			name:      "status error carries engine text",
			resp:      nativetest.Fail("Impossible route between points"),
			wantErr:   true,
			wantMsg:   "Impossible route between points",
			wantFrees: 1,
		},
		{
			name:      "null buffer with ok status",
			resp:      nativetest.Response{Status: native.StatusOK, Null: true},
			wantErr:   true,
			wantMsg:   "null message",
			wantFrees: 0,
		},
		{
			name:      "null buffer with error status",
			resp:      nativetest.Response{Status: 1, Null: true},
			wantErr:   true,
			wantMsg:   "null message",
			wantFrees: 0,
		},
		{
			name:      "invalid utf-8 is still freed",
			resp:      nativetest.OK("\xff\xfe"),
			wantErr:   true,
			wantMsg:   "UTF-8",
			wantFrees: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, op := range []string{"table", "route", "trip"} {
				lib := nativetest.New()
				lib.TableFunc = func([]float64, []int, []int) nativetest.Response { return tt.resp }
				lib.RouteFunc = func([]float64) nativetest.Response { return tt.resp }
				lib.TripFunc = func([]float64) nativetest.Response { return tt.resp }
				b := openFake(t, lib)

				var (
					text string
					err  error
				)
				points := []domain.Point{paris, lyon}
				switch op {
				case "table":
					text, err = b.Table(points, []int{0}, []int{1})
				case "route":
					text, err = b.Route(points)
				case "trip":
					text, err = b.Trip(points)
				}

				if tt.wantErr {
					require.ErrorIs(t, err, domain.ErrFFI, op)
					assert.Contains(t, err.Error(), tt.wantMsg, op)
					assert.Empty(t, text, op)
				} else {
					require.NoError(t, err, op)
					assert.Equal(t, tt.wantText, text, op)
				}

				s := lib.Stats()
				assert.Equal(t, tt.wantFrees, s.Frees, op)
				assert.Equal(t, s.Allocs, s.Frees, "%s: every allocated buffer is freed", op)
				assert.Equal(t, 0, s.LiveBuffers, op)
				assert.Equal(t, 0, s.BadFrees, op)
				assert.Equal(t, 0, s.BadReads, op)
			}
		})
	}
}

func TestConcurrentQueriesShareHandle(t *testing.T) {
	lib := nativetest.New()
	b := openFake(t, lib)

	const workers = 16
	const perWorker = 50

	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				var err error
				if (w+i)%2 == 0 {
					_, err = b.Route([]domain.Point{paris, lyon})
				} else {
					_, err = b.Table([]domain.Point{paris, marseille}, []int{0}, []int{1})
				}
				if err != nil {
					errs <- err
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("unexpected error: %v", err)
	}

	s := lib.Stats()
	assert.Equal(t, workers*perWorker, s.Allocs)
	assert.Equal(t, s.Allocs, s.Frees)
	assert.Equal(t, 1, s.Created)
}

func TestCloseWaitsForInFlightQuery(t *testing.T) {
	lib := nativetest.New()
	entered := make(chan struct{})
	release := make(chan struct{})
	lib.Hook = func(op string) {
		close(entered)
		<-release
	}

	b, err := native.Open(lib, "/data/france.osrm", "MLD")
	require.NoError(t, err)

	queryDone := make(chan error, 1)
	go func() {
		_, err := b.Route([]domain.Point{paris, lyon})
		queryDone <- err
	}()
	<-entered

	closeDone := make(chan struct{})
	go func() {
		_ = b.Close()
		close(closeDone)
	}()

	select {
	case <-closeDone:
		t.Fatal("Close returned while a query was in flight")
	default:
	}
	assert.Equal(t, 0, lib.Stats().Destroyed)

	close(release)
	require.NoError(t, <-queryDone)
	<-closeDone

	s := lib.Stats()
	assert.Equal(t, 1, s.Destroyed)
	assert.Equal(t, s.Allocs, s.Frees)
}

func TestDefaultLibraryWithoutEngine(t *testing.T) {
	_, err := native.Open(native.Default(), "/nonexistent/path.osrm", "MLD")
	require.ErrorIs(t, err, domain.ErrInitialization)
}
