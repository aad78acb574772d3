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

	"github.com/sabucaps/brazilian/internal/adapter/mapping"
	"github.com/sabucaps/brazilian/internal/app"
	"github.com/sabucaps/brazilian/internal/entity"
)

var reviewCmd = &cobra.Command{
	Use:   "review <user-id> <word-id> <easy|medium|hard>",
	Short: "记录一次复习结果并输出新的复习计划",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		outcome, err := entity.ParseReviewOutcome(args[2])
		if err != nil {
			return fmt.Errorf("复习结果必须是 easy、medium 或 hard: %w", err)
		}

		return withContainer(func(c *app.Container) error {
			result, err := c.Progress.ReviewWord(cmd.Context(), args[0], args[1], outcome)
			if err != nil {
				return fmt.Errorf("记录复习失败: %w", err)
			}
			p := result.Progress
			cmd.Printf("%s (%s): 系数 %.2f, 间隔 %d 天, 已复习 %d 次, 状态 %s\n",
				result.Term, result.Translation, p.Ease, p.Interval, p.ReviewCount, mapping.TierOf(p))
			cmd.Printf("下次复习: %s\n", formatTime(p.NextReview))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}
