package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"tee-wizard/config"
	"tee-wizard/models"
)

var errVendorNotReady = models.NewUpstreamError("printful", 404, "NotFound: Product not found")

// scriptedVendor replays canned answers for each call
type scriptedVendor struct {
	mu          sync.Mutex
	createErrs  []error
	createTask  *models.MockupTask
	statuses    []*models.MockupTask
	statusErrs  []error
	downloadErr error
	onStatus    func(call int)

	createCalls   int
	statusCalls   int
	downloadCalls int
	lastRequest   *models.MockupTaskRequest
}

func (v *scriptedVendor) CreateMockupTask(ctx context.Context, productID int64, req *models.MockupTaskRequest) (*models.MockupTask, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.createCalls++
	v.lastRequest = req
	if v.createCalls <= len(v.createErrs) {
		if err := v.createErrs[v.createCalls-1]; err != nil {
			return nil, err
		}
	}
	if v.createTask != nil {
		return v.createTask, nil
	}
	return &models.MockupTask{TaskKey: "gt-1", Status: "pending"}, nil
}

func (v *scriptedVendor) GetMockupTask(ctx context.Context, taskKey string) (*models.MockupTask, error) {
	v.mu.Lock()
	v.statusCalls++
	call := v.statusCalls
	v.mu.Unlock()
	if v.onStatus != nil {
		v.onStatus(call)
	}
	if call <= len(v.statusErrs) && v.statusErrs[call-1] != nil {
		return nil, v.statusErrs[call-1]
	}
	if call <= len(v.statuses) {
		return v.statuses[call-1], nil
	}
	return &models.MockupTask{TaskKey: taskKey, Status: "pending"}, nil
}

func (v *scriptedVendor) Download(ctx context.Context, assetURL string) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.downloadCalls++
	if v.downloadErr != nil {
		return nil, v.downloadErr
	}
	return []byte("mockup:" + assetURL), nil
}

func repeatErr(err error, n int) []error {
	out := make([]error, n)
	for i := range out {
		out[i] = err
	}
	return out
}

func processing(n int) []*models.MockupTask {
	out := make([]*models.MockupTask, n)
	for i := range out {
		out[i] = &models.MockupTask{TaskKey: "gt-1", Status: "pending"}
	}
	return out
}

func completed(url string) *models.MockupTask {
	return &models.MockupTask{
		TaskKey: "gt-1",
		Status:  "completed",
		Mockups: []models.Mockup{{Placement: "front", MockupURL: url}},
	}
}

func fastJobConfig() MockupJobConfig {
	cfg := DefaultMockupJobConfig()
	cfg.Availability.Delay = time.Millisecond
	cfg.Polling.Delay = time.Millisecond
	return cfg
}

func newTestRunner(t *testing.T, vendor MockupVendor) (*MockupJobRunner, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "generated-mockups")
	return NewMockupJobRunner(vendor, NewMockupStore(dir), fastJobConfig(), zaptest.NewLogger(t)), dir
}

var testJobSpec = MockupJobSpec{
	ProductID: 381,
	VariantID: 4012,
	ImageURL:  "https://cdn.example.com/design.png",
	Position:  &models.PrintfulPosition{AreaWidth: 4500, AreaHeight: 5400, Width: 3000, Height: 3000, Top: 1200, Left: 750},
}

func TestMockupJobRunner_Completes(t *testing.T) {
	vendor := &scriptedVendor{statuses: []*models.MockupTask{completed("https://files.example.com/m.jpg")}}
	runner, dir := newTestRunner(t, vendor)

	job, err := runner.Run(context.Background(), testJobSpec)
	require.NoError(t, err)
	assert.Equal(t, models.JobStateCompleted, job.State)
	assert.Equal(t, "gt-1", job.TaskKey)
	assert.Equal(t, "completed", job.Status)
	assert.Equal(t, "https://files.example.com/m.jpg", job.MockupURL)
	assert.Equal(t, "/generated-mockups/printful-mockup-381-4012.jpg", job.PublicPath)
	assert.Equal(t, filepath.Join(dir, "printful-mockup-381-4012.jpg"), job.FilePath)
	assert.Equal(t, 1, job.AvailabilityAttempts)
	assert.Equal(t, 1, job.PollAttempts)

	data, err := os.ReadFile(job.FilePath)
	require.NoError(t, err)
	assert.Equal(t, "mockup:https://files.example.com/m.jpg", string(data))

	require.NotNil(t, vendor.lastRequest)
	assert.Equal(t, []int{4012}, vendor.lastRequest.VariantIDs)
	assert.Equal(t, "jpg", vendor.lastRequest.Format)
	require.Len(t, vendor.lastRequest.Files, 1)
	assert.Equal(t, "front", vendor.lastRequest.Files[0].Placement)
	assert.Equal(t, testJobSpec.ImageURL, vendor.lastRequest.Files[0].ImageURL)
	assert.Equal(t, testJobSpec.Position, vendor.lastRequest.Files[0].Position)
}

func TestMockupJobRunner_WaitsForAvailability(t *testing.T) {
	vendor := &scriptedVendor{
		createErrs: repeatErr(errVendorNotReady, 14),
		statuses:   []*models.MockupTask{completed("https://files.example.com/m.jpg")},
	}
	runner, _ := newTestRunner(t, vendor)

	job, err := runner.Run(context.Background(), testJobSpec)
	require.NoError(t, err)
	assert.Equal(t, models.JobStateCompleted, job.State)
	assert.Equal(t, 15, job.AvailabilityAttempts)
	assert.Equal(t, 15, vendor.createCalls)
}

func TestMockupJobRunner_AvailabilityExhausted(t *testing.T) {
	vendor := &scriptedVendor{createErrs: repeatErr(errVendorNotReady, 15)}
	runner, _ := newTestRunner(t, vendor)

	job, err := runner.Run(context.Background(), testJobSpec)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAvailabilityExhausted)
	assert.Equal(t, models.JobStateFailed, job.State)
	assert.Equal(t, 15, job.AvailabilityAttempts)
	assert.Equal(t, 15, vendor.createCalls)
	assert.Zero(t, vendor.statusCalls)
}

func TestMockupJobRunner_OtherCreateErrorsAreFatal(t *testing.T) {
	vendor := &scriptedVendor{createErrs: []error{models.NewUpstreamError("printful", 400, "BadRequest")}}
	runner, _ := newTestRunner(t, vendor)

	job, err := runner.Run(context.Background(), testJobSpec)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrUpstream)
	assert.Equal(t, models.JobStateFailed, job.State)
	assert.Equal(t, 1, vendor.createCalls)
}

func TestMockupJobRunner_MissingTaskKey(t *testing.T) {
	vendor := &scriptedVendor{createTask: &models.MockupTask{Status: "pending"}}
	runner, _ := newTestRunner(t, vendor)

	job, err := runner.Run(context.Background(), testJobSpec)
	assert.ErrorIs(t, err, ErrMissingTaskKey)
	assert.Equal(t, models.JobStateFailed, job.State)
	assert.Zero(t, vendor.statusCalls)
}

func TestMockupJobRunner_CompletesOnLastPoll(t *testing.T) {
	vendor := &scriptedVendor{
		statuses: append(processing(9), completed("https://files.example.com/m.jpg")),
	}
	runner, _ := newTestRunner(t, vendor)

	job, err := runner.Run(context.Background(), testJobSpec)
	require.NoError(t, err)
	assert.Equal(t, models.JobStateCompleted, job.State)
	assert.Equal(t, 10, job.PollAttempts)
	assert.Equal(t, 10, vendor.statusCalls)
}

func TestMockupJobRunner_TimesOut(t *testing.T) {
	vendor := &scriptedVendor{statuses: processing(10)}
	runner, _ := newTestRunner(t, vendor)

	job, err := runner.Run(context.Background(), testJobSpec)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrTimeout)
	assert.Equal(t, models.JobStateTimedOut, job.State)
	assert.Equal(t, 10, job.PollAttempts)
	assert.Equal(t, 10, vendor.statusCalls)
	assert.Zero(t, vendor.downloadCalls)
}

func TestMockupJobRunner_CompletedWithoutURLKeepsPolling(t *testing.T) {
	vendor := &scriptedVendor{
		statuses: []*models.MockupTask{
			{TaskKey: "gt-1", Status: "completed"},
			completed("https://files.example.com/m.jpg"),
		},
	}
	runner, _ := newTestRunner(t, vendor)

	job, err := runner.Run(context.Background(), testJobSpec)
	require.NoError(t, err)
	assert.Equal(t, 2, job.PollAttempts)
}

func TestMockupJobRunner_PollErrorsKeepPolling(t *testing.T) {
	vendor := &scriptedVendor{
		statusErrs: []error{errors.New("connection reset"), nil},
		statuses:   []*models.MockupTask{nil, completed("https://files.example.com/m.jpg")},
	}
	runner, _ := newTestRunner(t, vendor)

	job, err := runner.Run(context.Background(), testJobSpec)
	require.NoError(t, err)
	assert.Equal(t, models.JobStateCompleted, job.State)
	assert.Equal(t, 2, job.PollAttempts)
}

func TestMockupJobRunner_DownloadFailure(t *testing.T) {
	vendor := &scriptedVendor{
		statuses:    []*models.MockupTask{completed("https://files.example.com/m.jpg")},
		downloadErr: models.NewUpstreamError("https://files.example.com/m.jpg", 403, "Forbidden"),
	}
	runner, dir := newTestRunner(t, vendor)

	job, err := runner.Run(context.Background(), testJobSpec)
	require.Error(t, err)
	assert.Equal(t, models.JobStateFailed, job.State)
	assert.Equal(t, 1, vendor.downloadCalls)
	assert.NoFileExists(t, filepath.Join(dir, "printful-mockup-381-4012.jpg"))
}

func TestMockupJobRunner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	vendor := &scriptedVendor{onStatus: func(call int) {
		if call == 2 {
			cancel()
		}
	}}
	cfg := fastJobConfig()
	cfg.Polling.Delay = 20 * time.Millisecond
	runner := NewMockupJobRunner(vendor, NewMockupStore(t.TempDir()), cfg, zaptest.NewLogger(t))

	job, err := runner.Run(ctx, testJobSpec)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, models.JobStateCancelled, job.State)
	assert.Equal(t, 2, vendor.statusCalls)
	assert.True(t, job.State.Terminal())
}

func TestMockupJobConfigFrom(t *testing.T) {
	cfg := MockupJobConfigFrom(&config.PrintfulConfig{AvailabilityAttempts: 5, AvailabilityDelay: time.Second})
	assert.Equal(t, RetryPolicy{Attempts: 5, Delay: time.Second}, cfg.Availability)
	assert.Equal(t, RetryPolicy{Attempts: 10, Delay: 2 * time.Second}, cfg.Polling)
	assert.Equal(t, "jpg", cfg.Format)
}
