package nds3

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"git.nextdev.network/nextdev/nextdev/src/config"
	"git.nextdev.network/nextdev/nextdev/src/logging"
	"git.nextdev.network/nextdev/nextdev/src/website"
	"github.com/spf13/cobra"
)

/*
A tiny S3-compatible server backed by the local filesystem, for running the
site without a real Spaces bucket. It implements just enough of the S3 API
for profile photo uploads: put, get, and delete of objects, plus bucket
creation. Point the Spaces endpoint config at this server in dev.
*/
func init() {
	s3Command := &cobra.Command{
		Use:   "nds3 [storage folder]",
		Short: "Run a local s3 server that stores in the filesystem",
		Run: func(cmd *cobra.Command, args []string) {
			targetFolder := "./tmp"
			if len(args) > 0 {
				targetFolder = args[0]
			}
			err := os.MkdirAll(targetFolder, fs.ModePerm)
			if err != nil {
				panic(err)
			}

			log := logging.GlobalLogger().With().Str("module", "nds3").Logger()

			handler := func(w http.ResponseWriter, r *http.Request) {
				bucket, key := bucketKey(r)
				log.Info().
					Str("method", r.Method).
					Str("bucket", bucket).
					Str("key", key).
					Msg("incoming request")

				switch r.Method {
				case http.MethodPut:
					body, err := io.ReadAll(r.Body)
					if err != nil {
						panic(err)
					}
					w.Header().Set("Location", fmt.Sprintf("/%s", bucket))
					err = os.MkdirAll(filepath.Join(targetFolder, bucket), fs.ModePerm)
					if err != nil {
						panic(err)
					}
					if key != "" {
						err = os.WriteFile(filepath.Join(targetFolder, bucket, key), body, fs.ModePerm)
						if err != nil {
							panic(err)
						}
					}
				case http.MethodGet, http.MethodHead:
					fileBytes, err := os.ReadFile(filepath.Join(targetFolder, bucket, key))
					if err != nil {
						if errors.Is(err, fs.ErrNotExist) {
							w.WriteHeader(http.StatusNotFound)
							return
						}
						panic(err)
					}
					if r.Method == http.MethodGet {
						w.Write(fileBytes)
					}
				case http.MethodDelete:
					err := os.Remove(filepath.Join(targetFolder, bucket, key))
					if err != nil && !errors.Is(err, fs.ErrNotExist) {
						panic(err)
					}
					w.WriteHeader(http.StatusNoContent)
				default:
					w.WriteHeader(http.StatusMethodNotAllowed)
				}
			}

			addr := listenAddr(config.Config.Spaces.Endpoint)
			http.HandleFunc("/", handler)
			log.Info().Msgf("Serving local object storage on %s", addr)
			panic(http.ListenAndServe(addr, nil))
		},
	}

	website.WebsiteCommand.AddCommand(s3Command)
}

// Listens on the same port the Spaces endpoint config points at, so the
// site finds this server without any extra configuration.
func listenAddr(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err == nil && u.Port() != "" {
		return ":" + u.Port()
	}
	return ":9003"
}

// Objects are stored flat within their bucket folder, with slashes in keys
// replaced so nested keys don't turn into nested directories.
func bucketKey(r *http.Request) (string, string) {
	slashIdx := strings.IndexByte(r.URL.Path[1:], '/')
	if slashIdx == -1 {
		return r.URL.Path[1:], ""
	}
	return r.URL.Path[1 : 1+slashIdx], strings.ReplaceAll(r.URL.Path[2+slashIdx:], "/", "~")
}
