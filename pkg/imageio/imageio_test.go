package imageio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rstms/isolyzer/pkg/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "image.iso")
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i)
	}
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("prefix only", func(t *testing.T) {
		path := writeFile(t, 10*2048)
		img, err := Load(path, 4)
		require.NoError(t, err)
		assert.Len(t, img.Data, 4*2048)
		assert.Equal(t, byte(1), img.Data[1])
		assert.Equal(t, int64(10*2048), img.Info.FileSizeInBytes)
		assert.Equal(t, "image.iso", img.Info.FileName)
		assert.True(t, filepath.IsAbs(img.Info.FilePath))
		assert.NotEmpty(t, img.Info.FileLastModified)
	})

	t.Run("small file", func(t *testing.T) {
		path := writeFile(t, 3000)
		img, err := Load(path, 0)
		require.NoError(t, err)
		assert.Len(t, img.Data, 3000)
	})

	t.Run("empty file", func(t *testing.T) {
		path := writeFile(t, 0)
		img, err := Load(path, 0)
		require.NoError(t, err)
		assert.Empty(t, img.Data)
		assert.Equal(t, int64(0), img.Info.FileSizeInBytes)
	})

	t.Run("missing file", func(t *testing.T) {
		img, err := Load(filepath.Join(t.TempDir(), "missing.iso"), 0)
		require.Error(t, err)
		assert.Equal(t, "missing.iso", img.Info.FileName)
		assert.Equal(t, report.FailureIO, Classify(err))
	})

	t.Run("directory", func(t *testing.T) {
		_, err := Load(t.TempDir(), 0)
		require.Error(t, err)
		assert.Equal(t, report.FailureIO, Classify(err))
	})
}

func recoverFrom(f func()) (err error) {
	defer func() {
		err = Recovered(recover())
	}()
	f()
	return nil
}

func TestClassify(t *testing.T) {
	assert.Equal(t, report.FailureNone, Classify(nil))
	assert.Equal(t, report.FailureUnknown, Classify(errors.New("something else")))
	assert.Equal(t, report.FailureIO, Classify(ErrShortRead))

	t.Run("allocation", func(t *testing.T) {
		err := recoverFrom(func() {
			n := -1
			_ = make([]byte, n)
		})
		require.ErrorIs(t, err, ErrOutOfMemory)
		assert.Equal(t, report.FailureMemory, Classify(err))
	})

	t.Run("runtime", func(t *testing.T) {
		err := recoverFrom(func() {
			var s []int
			i := 3
			_ = s[i]
		})
		require.Error(t, err)
		assert.Equal(t, report.FailureRuntime, Classify(err))
	})

	t.Run("plain panic", func(t *testing.T) {
		err := recoverFrom(func() {
			panic("boom")
		})
		require.Error(t, err)
		assert.Equal(t, report.FailureUnknown, Classify(err))
	})

	t.Run("no panic", func(t *testing.T) {
		assert.NoError(t, recoverFrom(func() {}))
	})
}
