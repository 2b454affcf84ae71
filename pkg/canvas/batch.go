package canvas

import (
	"fmt"
	"path/filepath"
	"sync"
)

// BatchRenderer 并发把快照的页面渲染成 PNG
type BatchRenderer struct {
	snapshot   *Snapshot
	maxWorkers int
	workerPool chan struct{}
}

// RenderJob 渲染任务，Page 从 0 开始
type RenderJob struct {
	Page       int
	OutputPath string
	Options    RenderOptions
}

// RenderResult 渲染结果
type RenderResult struct {
	Page  int
	Error error
}

// NewBatchRenderer 创建并发渲染器；maxWorkers <= 0 时使用 4 个工作槽位
func NewBatchRenderer(snapshot *Snapshot, maxWorkers int) *BatchRenderer {
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	return &BatchRenderer{
		snapshot:   snapshot,
		maxWorkers: maxWorkers,
		workerPool: make(chan struct{}, maxWorkers),
	}
}

// PageJobs 为所有页面生成任务，文件名为 dir/page_N.png（N 从 1 开始）
func PageJobs(pageCount int, dir string, opts RenderOptions) []RenderJob {
	jobs := make([]RenderJob, pageCount)
	for i := range jobs {
		jobs[i] = RenderJob{
			Page:       i,
			OutputPath: filepath.Join(dir, fmt.Sprintf("page_%d.png", i+1)),
			Options:    opts,
		}
	}
	return jobs
}

// RenderPages 并发执行任务，progress 在每个任务完成后被调用（可为 nil）
func (br *BatchRenderer) RenderPages(jobs []RenderJob, progress func(completed, total int)) []RenderResult {
	results := make([]RenderResult, len(jobs))
	var wg sync.WaitGroup
	var mu sync.Mutex
	completed := 0

	for i, job := range jobs {
		wg.Add(1)
		br.workerPool <- struct{}{}

		go func(index int, j RenderJob) {
			defer wg.Done()
			defer func() { <-br.workerPool }()

			opts := j.Options
			err := br.snapshot.RenderPagePNG(j.Page, j.OutputPath, &opts)
			results[index] = RenderResult{Page: j.Page, Error: err}
			if err != nil {
				renderLog.Error("failed to render page %d: %v", j.Page+1, err)
			} else {
				renderLog.Debug("rendered page %d to %s", j.Page+1, j.OutputPath)
			}

			mu.Lock()
			completed++
			current := completed
			mu.Unlock()

			if progress != nil {
				progress(current, len(jobs))
			}
		}(i, job)
	}

	wg.Wait()
	return results
}

// RenderAll 渲染所有页面到 dir，返回第一个错误
func (br *BatchRenderer) RenderAll(dir string, opts RenderOptions, progress func(completed, total int)) error {
	results := br.RenderPages(PageJobs(br.snapshot.PageCount(), dir, opts), progress)
	return firstError(results)
}

func firstError(results []RenderResult) error {
	var first error
	failed := 0
	for _, r := range results {
		if r.Error != nil {
			failed++
			if first == nil {
				first = r.Error
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to render %d pages, first error: %w", failed, first)
	}
	return nil
}
