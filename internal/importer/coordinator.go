package importer

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"rais/internal/mapper"
	"rais/internal/model"
	"rais/internal/parser"
	"rais/internal/store"
	"rais/internal/transformer"
	"rais/internal/validator"
)

// Coordinator 导入协调器
// 一次 Import 处理一个文件：解码、定位表头、分类、映射、转换、入会话层
type Coordinator struct {
	classifier  *parser.ReportClassifier
	mapper      *mapper.ColumnMapper
	transformer *transformer.Transformer
	store       *store.TwoTier

	mu   sync.Mutex
	seen map[string]map[string]bool // sessionID -> 已导入指纹
}

// NewCoordinator 创建导入协调器
func NewCoordinator(columnMapper *mapper.ColumnMapper, tf *transformer.Transformer, twoTier *store.TwoTier) *Coordinator {
	return &Coordinator{
		classifier:  parser.NewReportClassifier(),
		mapper:      columnMapper,
		transformer: tf,
		store:       twoTier,
		seen:        make(map[string]map[string]bool),
	}
}

// ImportOptions 导入选项
type ImportOptions struct {
	Filename     string
	Data         []byte
	SessionID    string
	KindOverride model.ReportKind // 调用方强制指定报表类型，空值表示自动识别
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`    // start/info/sheet_start/sheet_done/done/error
	Message   string      `json:"message"` // 事件消息
	Data      interface{} `json:"data"`    // 附加数据
	Timestamp time.Time   `json:"timestamp"`
}

// Import 执行导入，返回进度通道，done 事件携带完整报告
func (c *Coordinator) Import(ctx context.Context, opts ImportOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)
		c.doImport(ctx, opts, progressChan)
	}()

	return progressChan
}

// ImportSync 同步执行导入，只取最终报告
func (c *Coordinator) ImportSync(ctx context.Context, opts ImportOptions) *model.IngestReport {
	var report *model.IngestReport
	for ev := range c.Import(ctx, opts) {
		if r, ok := ev.Data.(*model.IngestReport); ok && (ev.Type == "done" || ev.Type == "error") {
			report = r
		}
	}
	return report
}

func (c *Coordinator) doImport(ctx context.Context, opts ImportOptions, progressChan chan ProgressEvent) {
	startTime := time.Now()

	report := &model.IngestReport{
		Filename:  opts.Filename,
		SessionID: opts.SessionID,
		Success:   true,
		Kind:      model.KindUnknown,
	}

	c.send(progressChan, "start", fmt.Sprintf("开始导入文件: %s", opts.Filename), nil)

	wb, err := parser.DecodeWorkbook(opts.Data, opts.Filename)
	if err != nil {
		// 只有解码失败和空文件是致命错误
		report.Success = false
		report.Errors = append(report.Errors, model.Issue{
			Message:  err.Error(),
			Severity: model.SeverityError,
		})
		report.Duration = time.Since(startTime)
		c.send(progressChan, "error", err.Error(), report)
		return
	}
	report.Fingerprint = wb.Fingerprint

	if c.markSeen(opts.SessionID, wb.Fingerprint) {
		report.Warn("", 0, "", "本会话已导入过相同内容的文件，跳过")
		report.Duration = time.Since(startTime)
		c.send(progressChan, "done", "重复文件，跳过导入", report)
		return
	}

	logID := c.createLog(opts, wb.Fingerprint)

	if ok, err := c.store.Permanent().HasImportedHash(wb.Fingerprint); err == nil && ok {
		report.Warn("", 0, "", "相同内容的文件此前已提交入库，继续导入可能重复计数")
	}

	c.send(progressChan, "info", fmt.Sprintf("发现 %d 个工作表", len(wb.Grids)), map[string]interface{}{
		"total_sheets": len(wb.Grids),
	})

	for _, grid := range wb.Grids {
		c.processGrid(ctx, grid, opts, report, progressChan)
	}

	report.Duration = time.Since(startTime)
	c.finishLog(logID, report)
	c.send(progressChan, "done", "导入完成", report)
}

// processGrid 处理单个工作表
func (c *Coordinator) processGrid(ctx context.Context, grid model.RawGrid, opts ImportOptions, report *model.IngestReport, progressChan chan ProgressEvent) {
	sheetStart := time.Now()

	c.send(progressChan, "sheet_start", fmt.Sprintf("正在解析工作表: %s", grid.SheetName), map[string]string{
		"sheet_name": grid.SheetName,
	})

	sheet := parser.BuildSheet(grid, opts.Filename)
	if len(sheet.Rows) == 0 {
		report.Sheets = append(report.Sheets, model.SheetResult{
			SheetName: grid.SheetName,
			Kind:      model.KindUnknown,
			Status:    "skipped",
			Duration:  time.Since(sheetStart),
		})
		report.Warn(grid.SheetName, 0, "", "工作表没有可用数据行")
		return
	}

	kind := opts.KindOverride
	if kind == "" || kind == model.KindUnknown {
		kind = c.classifier.Classify(opts.Filename, sheet.Headers).Kind
	}
	if report.Kind == model.KindUnknown && kind != model.KindUnknown {
		report.Kind = kind
	}
	if kind == model.KindUnknown {
		report.Warn(grid.SheetName, 0, "", "无法识别报表类型，按默认字段处理")
	}

	c.send(progressChan, "info", fmt.Sprintf("工作表 %q 识别为: %s", grid.SheetName, kind), map[string]interface{}{
		"sheet_name": grid.SheetName,
		"kind":       kind,
	})

	cfg := c.mapper.Map(ctx, sheet.Headers, sheet.Rows, kind, opts.Filename)
	for _, w := range cfg.Warnings {
		report.Warn(grid.SheetName, 0, "", w)
	}

	out := c.transformer.TransformSheet(sheet, kind, cfg)
	report.Warnings = append(report.Warnings, out.Warnings...)
	report.Warnings = append(report.Warnings, validator.CheckInspections(out.Inspections, grid.SheetName)...)
	report.Warnings = append(report.Warnings, validator.CheckBatches(out.Batches, grid.SheetName)...)

	report.Batches = append(report.Batches, out.Batches...)
	report.Inspections = append(report.Inspections, out.Inspections...)
	report.Defects = append(report.Defects, out.Defects...)

	// 表头以下被丢弃的全空行
	out.Stats.RowsSkipped = len(grid.Cells) - sheet.HeaderRow - 1 - len(sheet.Rows)
	report.Stats.Add(out.Stats)

	c.store.Sessions().Accumulate(opts.SessionID, out.Batches, out.Defects)

	report.Sheets = append(report.Sheets, model.SheetResult{
		SheetName: grid.SheetName,
		Kind:      kind,
		Status:    "imported",
		Stats:     out.Stats,
		Duration:  time.Since(sheetStart),
	})

	c.send(progressChan, "sheet_done", fmt.Sprintf("工作表 %s 导入完成: %d 行", grid.SheetName, out.Stats.RowsProcessed), map[string]interface{}{
		"sheet_name": grid.SheetName,
		"rows":       out.Stats.RowsProcessed,
	})
}

// markSeen 记录会话内指纹，已存在时返回 true
func (c *Coordinator) markSeen(sessionID, fingerprint string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	fps, ok := c.seen[sessionID]
	if !ok {
		fps = make(map[string]bool)
		c.seen[sessionID] = fps
	}
	if fps[fingerprint] {
		return true
	}
	fps[fingerprint] = true
	return false
}

// ForgetSession 会话提交或丢弃后清掉指纹记录
func (c *Coordinator) ForgetSession(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.seen, sessionID)
}

func (c *Coordinator) createLog(opts ImportOptions, fingerprint string) int64 {
	id, err := c.store.Permanent().CreateImportLog(opts.Filename, int64(len(opts.Data)), fingerprint, opts.SessionID)
	if err != nil {
		log.Printf("[importer] 写导入日志失败: %v", err)
		return 0
	}
	return id
}

func (c *Coordinator) finishLog(id int64, report *model.IngestReport) {
	if id == 0 {
		return
	}
	if err := c.store.Permanent().FinishImportLog(id, report); err != nil {
		log.Printf("[importer] 回填导入日志失败: %v", err)
	}
}

func (c *Coordinator) send(ch chan ProgressEvent, eventType, message string, data interface{}) {
	ev := ProgressEvent{Type: eventType, Message: message, Data: data, Timestamp: time.Now()}

	// done/error 必须送达，其余进度事件在通道满时丢弃
	if eventType == "done" || eventType == "error" {
		ch <- ev
		return
	}
	select {
	case ch <- ev:
	default:
	}
}
