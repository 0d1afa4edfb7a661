package wal

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// 自己定義常用的權限常量
const (
	// rw-r--r-- (擁有者讀寫，其他人唯讀) - 適用於大多數檔案
	FileModeReadOnly fs.FileMode = 0644

	// rwxr-xr-x (擁有者全開，其他人可讀可執行) - 適用於目錄
	FileModeExecutable fs.FileMode = 0755

	// rw------- (只有擁有者可讀寫) - 適用於私鑰、機密檔
	FileModePrivate fs.FileMode = 0600
)

// ErrClosed WAL 已關閉
var ErrClosed = errors.New("wal: closed")

// WAL append-only 的 JSON lines 檔案，每筆一行
type WAL struct {
	path string
	file *os.File
	mu   sync.Mutex
	size int64
}

// NewWAL 開啟或建立一個 WAL 檔案 (上層目錄不存在時一併建立)
// O_RDWR讀寫模式
// O_APPEND 每次寫入時自動跳到文件末尾
// O_CREATE 如果文件不存在則建立
func NewWAL(path string) (*WAL, error) {
	if err := os.MkdirAll(filepath.Dir(path), FileModeExecutable); err != nil {
		return nil, err
	}
	file, err := open(path)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	return &WAL{path: path, file: file, size: info.Size()}, nil
}

func open(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, FileModePrivate)
}

// Path 檔案路徑
func (w *WAL) Path() string { return w.path }

// Size 目前檔案大小 (bytes)
func (w *WAL) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// Write 寫入一筆資料並刷入硬碟
func (w *WAL) Write(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return ErrClosed
	}
	n, err := w.file.Write(data)
	w.size += int64(n)
	if err != nil {
		return err
	}
	return w.file.Sync()
}

// Sync 強制刷入硬碟 (關鍵！)
func (w *WAL) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return ErrClosed
	}
	return w.file.Sync()
}

// Close 關閉檔案
func (w *WAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// ReadAll 讀取所有資料
// callback 是一個函式，接收一個 json.RawMessage
// 這樣可以避免一次將所有資料載入記憶體
//
// 檔案尾端寫到一半的紀錄 (程序在寫入途中中止) 會被截掉，之後的寫入接在最後一筆完整紀錄後面
func (w *WAL) ReadAll(callback func(jsonRaw []byte) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return ErrClosed
	}

	// 確保從頭讀取
	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return err
	}

	decoder := json.NewDecoder(w.file)
	// good 最後一筆完整紀錄結束的位置
	var good int64
	for {
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return w.truncateLocked(good)
			}
			return err
		}
		good = decoder.InputOffset()
		if err := callback(raw); err != nil {
			return err
		}
	}
}

// truncateLocked 截掉 offset 之後的內容
func (w *WAL) truncateLocked(offset int64) error {
	if err := w.file.Truncate(offset); err != nil {
		return err
	}
	w.size = offset
	return w.file.Sync()
}

// Compact 以 records 寫出的內容取代整個檔案 (寫入暫存檔後 rename)
//
// 參數:
//
//	records: 呼叫 write 依序寫入要保留的紀錄
//
// 回傳:
//
//	error: 寫入或置換失敗，此時原檔案不變
func (w *WAL) Compact(records func(write func(v any) error) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return ErrClosed
	}

	tmp, err := os.CreateTemp(filepath.Dir(w.path), filepath.Base(w.path)+".compact-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	var size int64
	enc := json.NewEncoder(tmp)
	write := func(v any) error {
		before, _ := tmp.Seek(0, io.SeekCurrent)
		if err := enc.Encode(v); err != nil {
			return err
		}
		after, _ := tmp.Seek(0, io.SeekCurrent)
		size += after - before
		return nil
	}
	if err := records(write); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, FileModePrivate); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, w.path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	_ = w.file.Close()
	file, err := open(w.path)
	if err != nil {
		w.file = nil
		return err
	}
	w.file = file
	w.size = size
	return nil
}
