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
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	adapterrepo "github.com/sabucaps/brazilian/internal/adapter/repository"
	"github.com/sabucaps/brazilian/internal/app"
	"github.com/sabucaps/brazilian/internal/entity"
)

// dbInitCmd migrates the schema, then loads a vocabulary file and creates users.
var dbInitCmd = &cobra.Command{
	Use:     "db-init",
	Aliases: []string{"seed"},
	Short:   "初始化数据库并导入词汇表",
	Long: `执行数据库迁移，然后从 .csv / .xlsx 文件 (或包含它们的 .zip，可为 http 地址) 导入词汇表，并创建用户。
注意: go-sqlite3 需要 CGO_ENABLED=1 构建。如需仅迁移不导入，可使用 --schema-only。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		source, _ := cmd.Flags().GetString("file")
		sheet, _ := cmd.Flags().GetString("sheet")
		users, _ := cmd.Flags().GetStringSlice("user")
		schemaOnly, _ := cmd.Flags().GetBool("schema-only")
		cacheDir, _ := cmd.Flags().GetString("cache-dir")
		noCache, _ := cmd.Flags().GetBool("no-cache")

		return withContainer(func(c *app.Container) error {
			cmd.Println("数据库迁移完成")
			if schemaOnly {
				return nil
			}
			ctx := cmd.Context()

			if source != "" {
				start := time.Now()
				localPath, cleanup, err := resolveVocabularySource(ctx, source, cacheDir, noCache)
				if err != nil {
					return err
				}
				defer cleanup()

				items, err := adapterrepo.LoadVocabularyFile(localPath, adapterrepo.LoadOptions{SheetName: sheet})
				if err != nil {
					return fmt.Errorf("读取词汇表失败: %w", err)
				}
				created, skipped := 0, 0
				for i := range items {
					if _, err := c.Vocabulary.Create(ctx, &items[i]); err != nil {
						if errors.Is(err, entity.ErrDuplicateWord) {
							skipped++
							continue
						}
						return fmt.Errorf("导入词汇 %s 失败: %w", items[i].ID, err)
					}
					created++
				}
				cmd.Printf("词汇导入完成: 新增 %d, 跳过已存在 %d, 耗时 %s\n", created, skipped, time.Since(start).Round(time.Millisecond))
			}

			for _, spec := range users {
				user, err := parseUserSpec(spec)
				if err != nil {
					return err
				}
				if _, err := c.Users.CreateUser(ctx, user); err != nil {
					if errors.Is(err, entity.ErrUserAlreadyExists) {
						cmd.Printf("用户已存在: %s\n", user.ID)
						continue
					}
					return fmt.Errorf("创建用户 %s 失败: %w", user.ID, err)
				}
				cmd.Printf("已创建用户: %s (%s)\n", user.ID, user.Name)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(dbInitCmd)
	dbInitCmd.Flags().StringP("file", "f", "", "词汇表文件路径或下载地址 (.csv / .xlsx / .zip)")
	dbInitCmd.Flags().String("sheet", "", "xlsx 工作表名称 (默认第一个)")
	dbInitCmd.Flags().StringSlice("user", nil, "创建用户，格式 id 或 id:名称，可重复指定")
	dbInitCmd.Flags().Bool("schema-only", false, "仅执行数据库迁移，不导入数据")
	dbInitCmd.Flags().String("cache-dir", "", "下载缓存目录 (默认: 用户缓存目录/brazilian)")
	dbInitCmd.Flags().Bool("no-cache", false, "忽略本地缓存, 强制重新下载")
}

func parseUserSpec(spec string) (*entity.User, error) {
	id, name, _ := strings.Cut(strings.TrimSpace(spec), ":")
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" {
		return nil, fmt.Errorf("无效的用户参数 %q", spec)
	}
	if name == "" {
		name = id
	}
	return &entity.User{ID: id, Name: name}, nil
}

func isVocabularyFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".csv" || ext == ".xlsx"
}

// resolveVocabularySource turns a path or URL into a local .csv/.xlsx path,
// downloading and unpacking as needed.
func resolveVocabularySource(ctx context.Context, source, cacheDirFlag string, noCache bool) (string, func(), error) {
	cleanup := func() {}
	localPath := source

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		cacheDir, cachedPath, fromCache, err := prepareCachePath(source, cacheDirFlag, noCache)
		if err != nil {
			return "", cleanup, err
		}
		if !fromCache {
			if err := os.MkdirAll(cacheDir, 0o755); err != nil {
				return "", cleanup, fmt.Errorf("创建缓存目录失败: %w", err)
			}
			if err := downloadFile(ctx, source, cachedPath); err != nil {
				return "", cleanup, err
			}
		}
		localPath = cachedPath
	}

	if strings.EqualFold(filepath.Ext(localPath), ".zip") {
		tmpDir, err := os.MkdirTemp("", "vocabulary-*")
		if err != nil {
			return "", cleanup, err
		}
		cleanup = func() { _ = os.RemoveAll(tmpDir) }
		extracted, err := unzipSingle(isVocabularyFile, localPath, tmpDir)
		if err != nil {
			cleanup()
			return "", func() {}, err
		}
		localPath = extracted
	}
	return localPath, cleanup, nil
}

func downloadFile(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("下载失败: %s", resp.Status)
	}

	tmp := path + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func unzipSingle(match func(string) bool, zipPath, dstDir string) (string, error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", err
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !match(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		outPath := filepath.Join(dstDir, filepath.Base(f.Name))
		out, err := os.Create(outPath)
		if err != nil {
			return "", err
		}
		if _, err := io.Copy(out, rc); err != nil {
			out.Close()
			return "", err
		}
		if err := out.Close(); err != nil {
			return "", err
		}
		return outPath, nil
	}
	return "", errors.New("zip 中未找到 .csv 或 .xlsx 文件")
}

func prepareCachePath(url, cacheDirFlag string, noCache bool) (string, string, bool, error) {
	var base string
	if cacheDirFlag != "" {
		base = cacheDirFlag
	} else {
		userCache, err := os.UserCacheDir()
		if err != nil {
			return "", "", false, fmt.Errorf("获取用户缓存目录失败: %w", err)
		}
		base = filepath.Join(userCache, "brazilian")
	}
	// stable filename from URL hash, keeping the extension for format detection
	ext := strings.ToLower(path.Ext(strings.SplitN(url, "?", 2)[0]))
	name := fmt.Sprintf("vocabulary-%08x%s", crc32.ChecksumIEEE([]byte(url)), ext)
	cachedPath := filepath.Join(base, name)
	if !noCache {
		if st, err := os.Stat(cachedPath); err == nil && st.Size() > 0 {
			return base, cachedPath, true, nil
		}
	}
	return base, cachedPath, false, nil
}
