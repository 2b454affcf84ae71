package sketchfile

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/novvoo/go-pdfsketch/pkg/logging"
)

// Magic 文件头
const Magic = "skch"

// Version 当前写出的容器版本
const Version uint32 = 1

const (
	// maxPDFSize 与 maxRecordSize 是读取时的长度上限
	maxPDFSize    = 1 << 30
	maxRecordSize = 256 << 20
)

var (
	ErrBadMagic       = errors.New("sketchfile: not a skch file")
	ErrBadVersion     = errors.New("sketchfile: unsupported version")
	ErrBadPDFCount    = errors.New("sketchfile: unsupported pdf count")
	ErrLengthTooLarge = errors.New("sketchfile: length exceeds limit")
)

// File 解开后的容器内容
type File struct {
	Version uint32
	PDF     []byte
	// Record 序列化后的 Document，原样保存
	Record []byte
}

// Document 解码容器中的注释记录
func (f *File) Document() (*Document, error) {
	return UnmarshalDocument(f.Record)
}

// IsContainer 数据是否以 skch 魔数开头
func IsContainer(data []byte) bool {
	return bytes.HasPrefix(data, []byte(Magic))
}

// Write 写出容器：魔数、版本、PDF 个数（固定为 1）、PDF 长度与内容、记录长度与内容。
// 整数均为大端序
func Write(w io.Writer, pdf, record []byte) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(Magic); err != nil {
		return fmt.Errorf("failed to write magic: %w", err)
	}
	fields := []any{Version, uint32(1), uint64(len(pdf))}
	for _, v := range fields {
		if err := binary.Write(bw, binary.BigEndian, v); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	if _, err := bw.Write(pdf); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	if err := binary.Write(bw, binary.BigEndian, uint64(len(record))); err != nil {
		return fmt.Errorf("failed to write record length: %w", err)
	}
	if _, err := bw.Write(record); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return bw.Flush()
}

// Encode 把容器编码到内存
func Encode(pdf, record []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, pdf, record); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Read 解析容器，长度字段超过上限或数据截断时返回错误
func Read(r io.Reader) (*File, error) {
	br := bufio.NewReader(r)
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(br, magic); err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", err)
	}
	if string(magic) != Magic {
		return nil, ErrBadMagic
	}

	var version, pdfCount uint32
	if err := binary.Read(br, binary.BigEndian, &version); err != nil {
		return nil, fmt.Errorf("failed to read version: %w", err)
	}
	if version != Version {
		return nil, fmt.Errorf("%w: %d", ErrBadVersion, version)
	}
	if err := binary.Read(br, binary.BigEndian, &pdfCount); err != nil {
		return nil, fmt.Errorf("failed to read pdf count: %w", err)
	}
	if pdfCount != 1 {
		return nil, fmt.Errorf("%w: %d", ErrBadPDFCount, pdfCount)
	}

	pdf, err := readBlock(br, maxPDFSize, "pdf")
	if err != nil {
		return nil, err
	}
	record, err := readBlock(br, maxRecordSize, "record")
	if err != nil {
		return nil, err
	}
	if _, err := br.Peek(1); err == nil {
		logging.For(logging.File).Warn("trailing bytes after record")
	}
	return &File{Version: version, PDF: pdf, Record: record}, nil
}

// Decode 从内存解析容器
func Decode(data []byte) (*File, error) {
	return Read(bytes.NewReader(data))
}

// ReadFile 读取磁盘上的 .pdfsketch 文件
func ReadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// WriteFile 把容器写到磁盘
func WriteFile(path string, pdf, record []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Write(f, pdf, record); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readBlock(r io.Reader, limit uint64, what string) ([]byte, error) {
	var n uint64
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, fmt.Errorf("failed to read %s length: %w", what, err)
	}
	if n > limit {
		return nil, fmt.Errorf("%w: %s length %d", ErrLengthTooLarge, what, n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("failed to read %s (%d bytes): %w", what, n, err)
	}
	return buf, nil
}
