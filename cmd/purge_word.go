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
)

var purgeWordCmd = &cobra.Command{
	Use:   "purge-word <word-id>",
	Short: "删除词汇并清除所有用户在该词上的进度",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(c *app.Container) error {
			affected, err := c.Progress.PurgeWord(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("删除词汇失败: %w", err)
			}
			cmd.Printf("已删除 %s，清除了 %d 位用户的进度\n", args[0], affected)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(purgeWordCmd)
}
