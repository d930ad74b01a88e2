package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ifc-api/internal/common/logger"
	"ifc-api/internal/common/metrics"
	"ifc-api/internal/ifc"
	"ifc-api/internal/testutil"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helpers
// ==========================

func createTestEngine(t *testing.T, cfg *Config) *IFCEngine {
	t.Helper()
	if cfg == nil {
		cfg = &Config{ParseWorkers: 2, ParseTimeout: 5 * time.Second}
	}
	e, err := New(cfg, logger.NewTestLogger(t))
	require.NoError(t, err)
	return e
}

func openModel(t *testing.T, e *IFCEngine, content string) *Model {
	t.Helper()
	m, err := e.Open(context.Background(), []byte(content))
	require.NoError(t, err)
	return m
}

func lookup(t *testing.T, e *IFCEngine, m *Model, guid string) *Element {
	t.Helper()
	el, err := e.LookupByGUID(m, guid)
	require.NoError(t, err)
	return el
}

func stepFile(data string) string {
	return "ISO-10303-21;HEADER;FILE_SCHEMA(('IFC4'));ENDSEC;DATA;\n" + data + "ENDSEC;END-ISO-10303-21;"
}

// ==========================
// Construction Tests
// ==========================

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr string
	}{
		{name: "defaults", cfg: nil},
		{name: "valid", cfg: &Config{ParseWorkers: 1, ParseTimeout: time.Second}},
		{name: "no workers", cfg: &Config{ParseWorkers: 0, ParseTimeout: time.Second}, wantErr: "parse_workers must be positive"},
		{name: "no timeout", cfg: &Config{ParseWorkers: 1}, wantErr: "parse_timeout must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := New(tt.cfg, nil)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, e)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, e.logger)
			assert.NotNil(t, e.pool)
		})
	}
}

// ==========================
// Open Tests
// ==========================

func TestOpen_Success(t *testing.T) {
	e := createTestEngine(t, nil)

	m := openModel(t, e, testutil.SampleIFC)
	assert.Equal(t, ifc.SchemaIFC4, m.Schema())
	assert.Equal(t, len(testutil.SampleIFC), m.Size())
}

func TestOpen_Failures(t *testing.T) {
	e := createTestEngine(t, nil)

	tests := []struct {
		name    string
		content string
		cause   error
	}{
		{"garbage", testutil.GarbageIFC, ifc.ErrNotStepFile},
		{"unsupported schema", testutil.UnsupportedSchemaIFC, ifc.ErrUnsupportedSchema},
		{"empty", "", ifc.ErrNotStepFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := e.Open(context.Background(), []byte(tt.content))
			assert.Nil(t, m)
			assert.ErrorIs(t, err, ErrEngineOpen)
			assert.ErrorIs(t, err, tt.cause)
		})
	}
}

func TestOpen_Busy(t *testing.T) {
	e := createTestEngine(t, &Config{ParseWorkers: 1, ParseTimeout: 50 * time.Millisecond})

	require.NoError(t, e.pool.sem.Acquire(context.Background(), 1))
	m, err := e.Open(context.Background(), []byte(testutil.SampleIFC))
	assert.Nil(t, m)
	assert.ErrorIs(t, err, ErrEngineBusy)
	assert.NotErrorIs(t, err, ErrEngineOpen)

	e.pool.sem.Release(1)
	openModel(t, e, testutil.SampleIFC)
}

func TestOpen_CallerCancelled(t *testing.T) {
	e := createTestEngine(t, &Config{ParseWorkers: 1, ParseTimeout: time.Second})
	require.NoError(t, e.pool.sem.Acquire(context.Background(), 1))
	defer e.pool.sem.Release(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Open(ctx, []byte(testutil.SampleIFC))
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrEngineBusy)
}

func TestOpen_Concurrent(t *testing.T) {
	e := createTestEngine(t, &Config{ParseWorkers: 2, ParseTimeout: 10 * time.Second})

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Open(context.Background(), []byte(testutil.SampleIFC))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

// ==========================
// Parse Pool Tests
// ==========================

func TestParsePool_SlotHeldUntilWorkEnds(t *testing.T) {
	p := newParsePool(1)
	release := make(chan struct{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := p.run(ctx, func() error {
		<-release
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, p.sem.TryAcquire(1), "slot must stay taken while the work runs")

	close(release)
	require.Eventually(t, func() bool {
		if p.sem.TryAcquire(1) {
			p.sem.Release(1)
			return true
		}
		return false
	}, time.Second, 5*time.Millisecond)
}

func TestParsePool_RecoversPanic(t *testing.T) {
	p := newParsePool(1)

	err := p.run(context.Background(), func() error {
		panic("boom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parser panic: boom")

	assert.NoError(t, p.run(context.Background(), func() error { return nil }))
}

func TestParsePool_PropagatesError(t *testing.T) {
	p := newParsePool(1)
	want := errors.New("bad file")
	assert.ErrorIs(t, p.run(context.Background(), func() error { return want }), want)
}

// ==========================
// Query Tests
// ==========================

func TestLookupByGUID(t *testing.T) {
	e := createTestEngine(t, nil)
	m := openModel(t, e, testutil.SampleIFC)

	el := lookup(t, e, m, testutil.WallGUID)
	assert.Equal(t, testutil.WallGUID, el.GUID())
	assert.Equal(t, "IfcWall", e.ElementTypeName(el))

	_, err := e.LookupByGUID(m, "3ZZZZZZZZZZZZZZZZZZZZZ")
	assert.ErrorIs(t, err, ErrElementNotFound)

	_, err = e.LookupByGUID(nil, testutil.WallGUID)
	assert.ErrorIs(t, err, ErrElementNotFound)
}

func TestAttribute(t *testing.T) {
	e := createTestEngine(t, nil)
	m := openModel(t, e, testutil.SampleIFC)
	wall := lookup(t, e, m, testutil.WallGUID)

	tag, err := e.Attribute(wall, "Tag")
	require.NoError(t, err)
	assert.Equal(t, "W-101", *tag)

	desc, err := e.Attribute(wall, "Description")
	require.NoError(t, err)
	assert.Nil(t, desc)

	project := lookup(t, e, m, testutil.ProjectGUID)
	_, err = e.Attribute(project, "Tag")
	assert.ErrorIs(t, err, ErrNoAttribute)
}

func TestProjectName(t *testing.T) {
	e := createTestEngine(t, nil)

	name, found := e.ProjectName(openModel(t, e, testutil.SampleIFC))
	assert.True(t, found)
	require.NotNil(t, name)
	assert.Equal(t, testutil.SampleProjectName, *name)

	name, found = e.ProjectName(openModel(t, e, testutil.UnnamedProjectIFC))
	assert.True(t, found)
	assert.Nil(t, name)

	name, found = e.ProjectName(openModel(t, e, testutil.NoProjectIFC))
	assert.False(t, found)
	assert.Nil(t, name)
}

func TestProductCount(t *testing.T) {
	e := createTestEngine(t, nil)

	assert.Equal(t, testutil.SampleProductCount, e.ProductCount(openModel(t, e, testutil.SampleIFC)))
	assert.Equal(t, 1, e.ProductCount(openModel(t, e, testutil.NoProjectIFC)))
	assert.Equal(t, 0, e.ProductCount(openModel(t, e, testutil.UnnamedProjectIFC)))
	assert.Equal(t, testutil.MEPProductCount, e.ProductCount(openModel(t, e, testutil.MEPIFC)))
	assert.Equal(t, 0, e.ProductCount(nil))
}

func TestModel_Accessors(t *testing.T) {
	e := createTestEngine(t, nil)
	model := openModel(t, e, testutil.SampleIFC)

	assert.Equal(t, 36, model.Len())
	assert.Equal(t, len(testutil.SampleIFC), model.Size())
	assert.Equal(t, "sample-house.ifc", model.Header().Name)
	assert.Equal(t, "ifc-api", model.Header().OriginatingSystem)

	var empty *Model
	assert.Zero(t, empty.Len())
	assert.Zero(t, empty.Size())
	assert.Empty(t, empty.Header().Name)
}

// ==========================
// Derivation Tests
// ==========================

func TestGetPropertySets(t *testing.T) {
	e := createTestEngine(t, nil)
	m := openModel(t, e, testutil.SampleIFC)

	res := e.GetPropertySets(lookup(t, e, m, testutil.BeamGUID))
	require.False(t, res.Degraded())
	assert.Equal(t, true, res.Value["Pset_BeamCommon"]["LoadBearing"])
	assert.Equal(t, "HEA200", res.Value["Pset_BeamCommon"]["Reference"])
	assert.Contains(t, res.Value, "Qto_BeamBaseQuantities")

	res = e.GetPropertySets(lookup(t, e, m, testutil.SlabGUID))
	assert.False(t, res.Degraded())
	assert.Empty(t, res.Value)
}

func TestGetPropertySets_Degrades(t *testing.T) {
	e := createTestEngine(t, nil)
	m := openModel(t, e, testutil.DanglingPsetIFC)
	el := lookup(t, e, m, testutil.DanglingPsetGUID)

	before := promtest.ToFloat64(metrics.PropertyDerivationDegraded.WithLabelValues("psets"))
	res := e.GetPropertySets(el)
	assert.True(t, res.Degraded())
	assert.ErrorIs(t, res.Err, ifc.ErrDanglingRef)
	assert.NotNil(t, res.Value)
	assert.Empty(t, res.Value)
	assert.Equal(t, before+1, promtest.ToFloat64(metrics.PropertyDerivationDegraded.WithLabelValues("psets")))
}

func TestGetPropertySets_RecoversPanic(t *testing.T) {
	e := createTestEngine(t, nil)
	m := openModel(t, e, testutil.SampleIFC)

	res := e.GetPropertySets(&Element{model: m.file})
	assert.True(t, res.Degraded())
	assert.Contains(t, res.Err.Error(), "panicked")
	assert.Empty(t, res.Value)

	q := e.GetQuantities(&Element{model: m.file})
	assert.True(t, q.Degraded())
	assert.Empty(t, q.Value)
}

func TestGetQuantities(t *testing.T) {
	e := createTestEngine(t, nil)
	m := openModel(t, e, testutil.SampleIFC)

	before := promtest.ToFloat64(metrics.QuantitiesDropped.WithLabelValues("IfcQuantityCount"))
	res := e.GetQuantities(lookup(t, e, m, testutil.WallGUID))
	require.False(t, res.Degraded())
	assert.Equal(t, Quantities{
		"Length":      {Value: 5, Unit: "m"},
		"NetSideArea": {Value: 12.5, Unit: "m²"},
		"NetVolume":   {Value: 1.725, Unit: "m³"},
	}, res.Value)
	assert.NotContains(t, res.Value, "Openings")
	assert.Equal(t, before+1, promtest.ToFloat64(metrics.QuantitiesDropped.WithLabelValues("IfcQuantityCount")))

	res = e.GetQuantities(lookup(t, e, m, testutil.SlabGUID))
	assert.False(t, res.Degraded())
	assert.Empty(t, res.Value)
}

func TestGetQuantities_EdgeCases(t *testing.T) {
	e := createTestEngine(t, nil)
	m := openModel(t, e, stepFile(`#1=IFCSLAB('3cUkl32yn9qRSPvBJVyWYp',$,'Slab',$,$,$,$,$,$);
#2=IFCQUANTITYAREA('GrossArea',$,$,$,$);
#3=IFCQUANTITYWEIGHT('GrossWeight',$,$,120.,$);
#4=IFCQUANTITYLENGTH('Width',$,$,0.2,$);
#5=IFCPHYSICALCOMPLEXQUANTITY('Layer',$,(#4),'layer',$,$);
#6=IFCQUANTITYVOLUME('Volume',$,$,3.5,$);
#7=IFCELEMENTQUANTITY('2i$w8BYy87dvani2xjLE$7',$,'Qto_A',$,$,(#2,#3,#5));
#8=IFCELEMENTQUANTITY('3ikASDTyPhQz0ziAFnPzMt',$,'Qto_B',$,$,(#6));
#9=IFCRELDEFINESBYPROPERTIES('2cVNVAc$hva9FrLhJ_r59e',$,$,$,(#1),(#7,#8));
`))

	res := e.GetQuantities(lookup(t, e, m, "3cUkl32yn9qRSPvBJVyWYp"))
	require.False(t, res.Degraded())
	assert.Equal(t, Quantities{"Volume": {Value: 3.5, Unit: "m³"}}, res.Value)
}

func TestGetQuantities_Degrades(t *testing.T) {
	e := createTestEngine(t, nil)
	m := openModel(t, e, testutil.DanglingPsetIFC)

	res := e.GetQuantities(lookup(t, e, m, testutil.DanglingPsetGUID))
	assert.True(t, res.Degraded())
	assert.ErrorIs(t, res.Err, ifc.ErrDanglingRef)
	assert.NotNil(t, res.Value)
	assert.Empty(t, res.Value)
}
