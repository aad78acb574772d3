/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sabucaps/brazilian/internal/app"
	"github.com/sabucaps/brazilian/internal/usecase/backup"
)

const (
	exportOutputKey  = "backup.export.output"
	exportGzipKey    = "backup.export.gzip"
	exportSectionKey = "backup.export.sections"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "导出词汇、用户与学习进度为 NDJSON 备份",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		outputPath := viper.GetString(exportOutputKey)
		gzipEnabled := viper.GetBool(exportGzipKey)
		sections := sectionsFromConfig(exportSectionKey)

		if outputPath == "" {
			outputPath = defaultExportFilename(gzipEnabled)
		}
		if !gzipEnabled && outputPath != "-" && strings.HasSuffix(strings.ToLower(outputPath), ".gz") {
			gzipEnabled = true
		}

		return withContainer(func(c *app.Container) (err error) {
			var (
				writer   = cmd.OutOrStdout()
				closeFns []func() error
			)

			if outputPath != "-" {
				if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
					return fmt.Errorf("创建输出目录失败: %w", err)
				}
				file, openErr := os.Create(outputPath)
				if openErr != nil {
					return fmt.Errorf("创建备份文件失败: %w", openErr)
				}
				writer = file
				closeFns = append(closeFns, file.Close)
			}

			if gzipEnabled {
				gz := gzip.NewWriter(writer)
				writer = gz
				closeFns = append([]func() error{gz.Close}, closeFns...)
			}

			defer func() {
				for _, closer := range closeFns {
					if cerr := closer(); cerr != nil && err == nil {
						err = cerr
					}
				}
			}()

			progress := newCLIProgress(cmd.ErrOrStderr())
			exportOpts := []backup.ExportOption{backup.WithProgressReporter(progress)}
			if len(sections) > 0 {
				exportOpts = append(exportOpts, backup.WithSections(sections))
			}

			if err := c.Backup.Export(ctx, writer, exportOpts...); err != nil {
				return fmt.Errorf("导出备份失败: %w", err)
			}

			if outputPath == "-" {
				cmd.PrintErrln("导出完成: 输出到标准输出")
			} else {
				cmd.Printf("导出完成: %s\n", outputPath)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("output", "o", "", "备份输出文件路径，使用 - 表示标准输出")
	exportCmd.Flags().Bool("gzip", false, "使用 gzip 压缩输出")
	exportCmd.Flags().StringSlice("sections", nil, "仅导出指定部分 (vocabulary, users, progress)，逗号分隔或重复指定")

	bindExportConfig()
}

func defaultExportFilename(gzipEnabled bool) string {
	ts := time.Now().UTC().Format("20060102-150405")
	filename := fmt.Sprintf("brazilian-backup-%s.jsonl", ts)
	if gzipEnabled {
		filename += ".gz"
	}
	return filename
}

func bindExportConfig() {
	bindFlagToViper(exportOutputKey, exportCmd.Flags().Lookup("output"))
	bindFlagToViper(exportGzipKey, exportCmd.Flags().Lookup("gzip"))
	bindFlagToViper(exportSectionKey, exportCmd.Flags().Lookup("sections"))
}

type cliProgress struct {
	out         io.Writer
	totals      map[string]int
	counts      map[string]int
	lastPrinted map[string]int
	steps       map[string]int
}

func newCLIProgress(out io.Writer) *cliProgress {
	return &cliProgress{
		out:         out,
		totals:      make(map[string]int),
		counts:      make(map[string]int),
		lastPrinted: make(map[string]int),
		steps:       make(map[string]int),
	}
}

func (p *cliProgress) StartSection(section string, total int) {
	if total < 0 {
		total = 0
	}
	p.totals[section] = total
	p.counts[section] = 0
	p.lastPrinted[section] = 0
	p.steps[section] = progressStep(total)
	fmt.Fprintf(p.out, "开始导出 %s (共 %d 条)\n", section, total)
}

func (p *cliProgress) Increment(section string, delta int) {
	if delta <= 0 {
		return
	}
	current := p.counts[section] + delta
	p.counts[section] = current
	total := p.totals[section]
	step := p.steps[section]
	if step <= 0 {
		step = 1
	}
	last := p.lastPrinted[section]
	if current == total || last == 0 || current-last >= step {
		p.printProgress(section, current, total)
		p.lastPrinted[section] = current
	}
}

func (p *cliProgress) FinishSection(section string) {
	current := p.counts[section]
	total := p.totals[section]
	if current != p.lastPrinted[section] {
		p.printProgress(section, current, total)
	}
	if total > 0 {
		fmt.Fprintf(p.out, "完成导出 %s: %d/%d 条\n", section, current, total)
	} else {
		fmt.Fprintf(p.out, "完成导出 %s: %d 条\n", section, current)
	}
	delete(p.counts, section)
	delete(p.totals, section)
	delete(p.lastPrinted, section)
	delete(p.steps, section)
}

func (p *cliProgress) printProgress(section string, current, total int) {
	if total > 0 {
		fmt.Fprintf(p.out, "导出进度 %s: %d/%d\n", section, current, total)
	} else {
		fmt.Fprintf(p.out, "导出进度 %s: 已处理 %d 条\n", section, current)
	}
}

func progressStep(total int) int {
	if total <= 0 {
		return 1000
	}
	step := total / 20
	if step < 1 {
		step = 1
	}
	if step > 1000 {
		step = 1000
	}
	return step
}
