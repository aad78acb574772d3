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
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sabucaps/brazilian/internal/app"
	"github.com/sabucaps/brazilian/internal/usecase/backup"
)

const (
	importInputKey   = "backup.import.input"
	importGzipKey    = "backup.import.gzip"
	importSectionKey = "backup.import.sections"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "从备份文件恢复词汇、用户与学习进度",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		inputPath := viper.GetString(importInputKey)
		gzipEnabled := viper.GetBool(importGzipKey)
		sections := sectionsFromConfig(importSectionKey)

		if inputPath == "" {
			return fmt.Errorf("请通过 --input 指定备份文件或使用 - 表示标准输入")
		}
		if !gzipEnabled && inputPath != "-" && strings.HasSuffix(strings.ToLower(inputPath), ".gz") {
			gzipEnabled = true
		}

		return withContainer(func(c *app.Container) (err error) {
			var (
				reader  = cmd.InOrStdin()
				closers []func() error
			)

			if inputPath != "-" {
				file, openErr := os.Open(filepath.Clean(inputPath))
				if openErr != nil {
					return fmt.Errorf("打开备份文件失败: %w", openErr)
				}
				reader = file
				closers = append(closers, file.Close)
			}

			if gzipEnabled {
				gzr, gzErr := gzip.NewReader(reader)
				if gzErr != nil {
					for _, closer := range closers {
						_ = closer()
					}
					return fmt.Errorf("创建 gzip 读取器失败: %w", gzErr)
				}
				reader = gzr
				closers = append([]func() error{gzr.Close}, closers...)
			}

			defer func() {
				for _, closer := range closers {
					if cerr := closer(); cerr != nil && err == nil {
						err = cerr
					}
				}
			}()

			var importOpts []backup.ImportOption
			if len(sections) > 0 {
				importOpts = append(importOpts, backup.WithImportSections(sections))
			}

			stats, err := c.Backup.Import(ctx, reader, importOpts...)
			if err != nil {
				return fmt.Errorf("导入备份失败: %w", err)
			}

			source := inputPath
			if inputPath == "-" {
				source = "标准输入"
			}
			cmd.Printf("导入完成: %s (词汇 %d, 用户 %d, 进度 %d)\n", source,
				stats[backup.SectionVocabulary], stats[backup.SectionUsers], stats[backup.SectionProgress])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringP("input", "i", "", "备份文件路径，使用 - 表示标准输入")
	importCmd.Flags().Bool("gzip", false, "输入为 gzip 压缩格式")
	importCmd.Flags().StringSlice("sections", nil, "仅导入指定部分 (vocabulary, users, progress)，逗号分隔或重复指定")

	bindImportConfig()
}

func bindImportConfig() {
	bindFlagToViper(importInputKey, importCmd.Flags().Lookup("input"))
	bindFlagToViper(importGzipKey, importCmd.Flags().Lookup("gzip"))
	bindFlagToViper(importSectionKey, importCmd.Flags().Lookup("sections"))
}
