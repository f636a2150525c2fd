package wrappers

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"
	"strings"

	"github.com/karrick/godirwalk"

	"github.com/user/cyberusb/pkg/engine"
	"github.com/user/cyberusb/pkg/logger"
	"github.com/user/cyberusb/pkg/sysexec"
)

// HeadBytes is how much of each candidate file the directory scan reads.
const HeadBytes = 4096

var skipDirs = map[string]struct{}{
	".git": {}, ".svn": {}, ".hg": {}, "__pycache__": {}, ".cache": {},
}

// DirectoryScanner walks Dir and yields the head of every file carrying a
// suspicious extension.
type DirectoryScanner struct {
	Dir        string
	Signatures engine.SignatureSet
}

func (d *DirectoryScanner) Name() string {
	return "files"
}

// Collect returns {path, content} records in lexical walk order. Files that
// cannot be read are skipped; a root that cannot be walked is unavailable.
func (d *DirectoryScanner) Collect(ctx context.Context) ([]engine.Record, error) {
	records := []engine.Record{}
	err := godirwalk.Walk(d.Dir, &godirwalk.Options{
		FollowSymbolicLinks: false,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if de.IsDir() {
				if _, skip := skipDirs[de.Name()]; skip {
					return godirwalk.SkipThis
				}
				return nil
			}
			if !de.IsRegular() || !d.Signatures.HasSuspiciousExtension(de.Name()) {
				return nil
			}
			head, err := readHead(path, HeadBytes)
			if err != nil {
				logger.Debugf("Skipping %s: %v", path, err)
				return nil
			}
			records = append(records, engine.NewRecord(d.Name(),
				"path", path,
				"content", head,
			))
			return nil
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			if ctx.Err() != nil {
				return godirwalk.Halt
			}
			logger.Debugf("Cannot access %s: %v", path, err)
			return godirwalk.SkipNode
		},
	})
	if ctx.Err() != nil {
		return records, ctx.Err()
	}
	if err != nil {
		return records, sysexec.Unavailable(d.Name(), err)
	}
	return records, nil
}

// readHead returns up to n bytes of the file as text, dropping invalid UTF-8.
func readHead(path string, n int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", err
	}
	return strings.ToValidUTF8(string(buf[:read]), ""), nil
}

// HashFile returns the hex MD5 of the file at path, read in 8 KiB chunks.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.CopyBuffer(h, f, make([]byte, 8192)); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
