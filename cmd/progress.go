/*
Copyright © 2025 The brazilian Authors

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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sabucaps/brazilian/internal/app"
	"github.com/sabucaps/brazilian/internal/repository"
)

var progressCmd = &cobra.Command{
	Use:   "progress <user-id>",
	Short: "查看用户在全部词汇上的学习进度",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, _ := cmd.Flags().GetString("filter")
		orderBy, _ := cmd.Flags().GetString("order-by")
		page, _ := cmd.Flags().GetInt32("page")
		pageSize, _ := cmd.Flags().GetInt32("page-size")
		summaryOnly, _ := cmd.Flags().GetBool("summary")
		rawNow, _ := cmd.Flags().GetString("now")
		now, err := parseNow(rawNow)
		if err != nil {
			return err
		}

		return withContainer(func(c *app.Container) error {
			summary, err := c.Progress.GetSummary(cmd.Context(), args[0], now)
			if err != nil {
				return fmt.Errorf("统计学习进度失败: %w", err)
			}
			if !summaryOnly {
				pagination := repository.Pagination{PageNo: page, PageSize: pageSize}
				pagination.Normalize()
				items, total, err := c.Progress.GetProgressList(cmd.Context(), &repository.ListProgressQuery{
					Pagination:  pagination,
					FilterOrder: repository.FilterOrder{Filter: filter, OrderBy: orderBy},
					UserID:      args[0],
					Now:         now,
				})
				if err != nil {
					return fmt.Errorf("查询学习进度失败: %w", err)
				}
				writeProgressTable(cmd.OutOrStdout(), items)
				cmd.Printf("显示 %d/%d 条\n\n", len(items), total)
			}

			cmd.Printf("总计 %d: 新词 %d, 学习中 %d, 待巩固 %d, 已掌握 %d, 当前待复习 %d\n",
				summary.Total, summary.New, summary.Learning, summary.NeedsReview, summary.Mastered, summary.Due)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(progressCmd)

	progressCmd.Flags().String("filter", "", "CEL 过滤表达式，例如 tier == \"mastered\" && interval >= 30")
	progressCmd.Flags().String("order-by", "", "排序字段: term, ease, interval, review_count, next_review，可加 desc")
	progressCmd.Flags().Int32("page", 1, "页码")
	progressCmd.Flags().Int32("page-size", 0, "每页数量，0 表示不分页")
	progressCmd.Flags().Bool("summary", false, "仅输出统计")
	progressCmd.Flags().String("now", "", "以指定时间 (RFC3339) 计算，默认当前时间")
}
