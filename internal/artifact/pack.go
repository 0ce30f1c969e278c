package artifact

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Pack validates dir and writes its four bundle files at the root of a zip
// archive, the layout Fetch expects.
func Pack(dir string, w io.Writer) error {
	if err := Validate(dir); err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	for _, name := range RequiredFiles {
		if err := addFile(zw, filepath.Join(dir, name), name); err != nil {
			zw.Close()
			return fmt.Errorf("pack %s: %w", name, err)
		}
	}
	return zw.Close()
}

func addFile(zw *zip.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = zip.Deflate

	dst, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = io.Copy(dst, f)
	return err
}
