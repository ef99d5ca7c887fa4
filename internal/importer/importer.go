package importer

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/ochronus/gotransloadit/internal/app"
	"github.com/ochronus/gotransloadit/internal/services/transloadit"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Importer registers remote files with an assembly using a pool of workers
type Importer struct {
	client     transloadit.ClientAPI
	httpClient *http.Client
	workers    int
	limiter    *rate.Limiter
	logger     *logrus.Logger
}

// NewImporter creates a new importer from the container's dependencies
func NewImporter(container *app.Container) *Importer {
	httpClient := container.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	workers := container.Config.ImportWorkers
	if workers < 1 {
		workers = 1
	}

	var limiter *rate.Limiter
	if r := container.Config.ImportRate; r > 0 {
		limiter = rate.NewLimiter(rate.Limit(r), 1)
	}

	return &Importer{
		client:     container.Client,
		httpClient: httpClient,
		workers:    workers,
		limiter:    limiter,
		logger:     container.Logger,
	}
}

// CreateAndImport creates an assembly expecting len(files) files and imports them into it.
func (im *Importer) CreateAndImport(ctx context.Context, opts transloadit.AssemblyOptions, files []RemoteFile) (*transloadit.Assembly, []Result, error) {
	opts.ExpectedFiles = len(files)

	assembly, err := im.client.CreateAssembly(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("create assembly: %w", err)
	}
	im.logger.Infof("assembly %s created, importing %d file(s)", assembly.ID(), len(files))

	results, err := im.Import(ctx, assembly.Ref(), files)
	return assembly, results, err
}

// Import reserves and adds every file. Results are returned in input order;
// the error reports how many files failed.
func (im *Importer) Import(ctx context.Context, assembly transloadit.AssemblyRef, files []RemoteFile) ([]Result, error) {
	if assembly.SSLURL == "" {
		return nil, transloadit.ErrMissingAssemblyURL
	}
	if len(files) == 0 {
		return nil, nil
	}

	results := make([]Result, len(files))
	jobs := make(chan importJob)

	var wg sync.WaitGroup
	for i := 0; i < min(im.workers, len(files)); i++ {
		wg.Add(1)
		go im.importWorker(ctx, assembly, jobs, results, &wg)
	}

	sent := 0
feed:
	for i, file := range files {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- importJob{index: i, file: file}:
			sent++
		}
	}
	close(jobs)
	wg.Wait()

	for i := sent; i < len(files); i++ {
		results[i] = Result{File: files[i], Status: StatusFailed, Err: ctx.Err()}
	}

	failed := 0
	for _, r := range results {
		if r.Status != StatusAdded {
			failed++
		}
	}
	if failed > 0 {
		return results, fmt.Errorf("%d of %d file(s) failed to import", failed, len(files))
	}
	return results, nil
}

// importWorker handles files until the jobs channel is closed
func (im *Importer) importWorker(ctx context.Context, assembly transloadit.AssemblyRef, jobs <-chan importJob, results []Result, wg *sync.WaitGroup) {
	defer wg.Done()

	for job := range jobs {
		results[job.index] = im.importFile(ctx, assembly, job.file)
	}
}

// importFile reserves capacity for a file and then adds it
func (im *Importer) importFile(ctx context.Context, assembly transloadit.AssemblyRef, file RemoteFile) Result {
	result := Result{File: file, Status: StatusFailed}
	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	if file.Size < 0 {
		size, err := im.probeSize(ctx, file.URL)
		if err != nil {
			im.logger.Errorf("%s: failed to determine size: %v", file, err)
			result.Err = err
			return result
		}
		file.Size = size
		result.File = file
	}

	if err := im.wait(ctx); err != nil {
		result.Err = err
		return result
	}
	reserve, err := im.client.ReserveFile(ctx, assembly, file.FileRef())
	if err != nil {
		im.logger.Errorf("%s: reserve failed: %v", file, err)
		result.Err = fmt.Errorf("reserve %s: %w", file.Name, err)
		return result
	}
	result.Reserve = reserve
	result.Status = StatusReserved

	if err := im.wait(ctx); err != nil {
		result.Err = err
		return result
	}
	added, err := im.client.AddFile(ctx, assembly, file.FileRef())
	if err != nil {
		im.logger.Errorf("%s: add failed: %v", file, err)
		result.Err = fmt.Errorf("add %s: %w", file.Name, err)
		return result
	}
	result.Add = added
	result.Status = StatusAdded

	im.logger.Infof("%s: added (%d bytes)", file, file.Size)
	return result
}

// wait blocks until the rate limiter allows another request
func (im *Importer) wait(ctx context.Context) error {
	if im.limiter == nil {
		return nil
	}
	return im.limiter.Wait(ctx)
}

// probeSize asks the remote host for the file's Content-Length
func (im *Importer) probeSize(ctx context.Context, rawURL string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return 0, err
	}

	resp, err := im.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP error: %s", resp.Status)
	}
	if resp.ContentLength < 0 {
		return 0, fmt.Errorf("no Content-Length in response")
	}

	return resp.ContentLength, nil
}
