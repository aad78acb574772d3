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
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sabucaps/brazilian/internal/adapter/mapping"
	"github.com/sabucaps/brazilian/internal/app"
	"github.com/sabucaps/brazilian/internal/entity"
	"github.com/sabucaps/brazilian/internal/repository"
)

var dueCmd = &cobra.Command{
	Use:   "due <user-id>",
	Short: "列出当前需要复习的词汇",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rawNow, _ := cmd.Flags().GetString("now")
		orderBy, _ := cmd.Flags().GetString("order-by")
		filter, _ := cmd.Flags().GetString("filter")
		now, err := parseNow(rawNow)
		if err != nil {
			return err
		}

		return withContainer(func(c *app.Container) error {
			items, err := c.Progress.GetDueList(cmd.Context(), &repository.DueListQuery{
				FilterOrder: repository.FilterOrder{Filter: filter, OrderBy: orderBy},
				UserID:      args[0],
				Now:         now,
			})
			if err != nil {
				return fmt.Errorf("查询待复习词汇失败: %w", err)
			}
			if len(items) == 0 {
				cmd.Println("暂无需要复习的词汇")
				return nil
			}
			writeProgressTable(cmd.OutOrStdout(), items)
			cmd.Printf("共 %d 个待复习\n", len(items))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(dueCmd)

	dueCmd.Flags().String("now", "", "以指定时间 (RFC3339) 计算，默认当前时间")
	dueCmd.Flags().String("order-by", "", "排序，目前仅支持 next_review [asc|desc]")
	dueCmd.Flags().String("filter", "", "CEL 过滤表达式，例如 group == \"animals\"")
}

func writeProgressTable(out io.Writer, items []entity.VocabularyProgress) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\t词汇\t释义\t状态\t系数\t间隔\t次数\t下次复习")
	for _, item := range items {
		p := item.Progress
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\t%d\t%d\t%s\n",
			item.ID, item.Term, item.Translation, mapping.TierOf(p), p.Ease, p.Interval, p.ReviewCount, formatTime(p.NextReview))
	}
	_ = tw.Flush()
}
