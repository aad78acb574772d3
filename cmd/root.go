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
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "brazilian",
	Short: "间隔重复词汇学习进度服务",
	Long: `brazilian 记录每位用户在每个词汇上的复习进度 (难度系数、间隔、复习次数、上次/下次复习时间)，
根据复习结果 (easy / medium / hard) 计算下一次复习时间，并回答 "现在该复习哪些词"。

配置从 .env 或环境变量读取，例如 DATABASE_DRIVER、STORE_DRIVER、LOG_LEVEL。`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("db-driver", "", "数据库驱动: sqlite3 | postgres | pgx")
	rootCmd.PersistentFlags().String("dsn", "", "数据库连接串，优先于分项配置")
	rootCmd.PersistentFlags().String("store", "", "进度存储: sql | redis | file")
	rootCmd.PersistentFlags().String("log-level", "", "日志级别: debug | info | warn | error")

	bindFlagToViper("database.driver", rootCmd.PersistentFlags().Lookup("db-driver"))
	bindFlagToViper("database.dsn", rootCmd.PersistentFlags().Lookup("dsn"))
	bindFlagToViper("store.driver", rootCmd.PersistentFlags().Lookup("store"))
	bindFlagToViper("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}
