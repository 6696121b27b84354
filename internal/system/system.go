package system

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/mem"
)

// InitResourceLimits поднимает лимит открытых файлов: экспорт PNG держит
// открытым по файлу на каждого воркера.
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Warn().Err(err).Msg("не удалось получить лимит файлов")
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Warn().Err(err).Msg("не удалось установить лимит файлов")
		return
	}
	log.Debug().Uint64("nofile", uint64(rLimit.Cur)).Msg("open file limit raised")
}

// FindLatest returns the most recently modified file in dir whose extension
// is one of exts (case-insensitive).
func FindLatest(dir string, exts ...string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !hasExt(f.Name(), exts) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("в папке %s не найдено файлов %s", dir, strings.Join(exts, ", "))
	}
	return latestFile, nil
}

func hasExt(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// GetBestH264Encoder опрашивает ffmpeg и выбирает аппаратный H.264 энкодер,
// если он доступен.
func GetBestH264Encoder(ctx context.Context, ffmpegPath string) string {
	// Приоритеты:
	// 1. MacOS (VideoToolbox)
	// 2. NVIDIA (NVENC)
	// 3. Software (libx264)
	out, err := exec.CommandContext(ctx, ffmpegPath, "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		log.Debug().Err(err).Msg("ffmpeg encoder probe failed")
		return "libx264"
	}
	return pickEncoder(string(out))
}

func pickEncoder(listing string) string {
	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(listing, name) {
			return name
		}
	}
	return "libx264"
}

// FrameBudget возвращает, сколько кадров по frameBytes могут одновременно ждать
// энкодер: четверть доступной памяти, в пределах [lo, hi].
func FrameBudget(frameBytes, lo, hi int) int {
	vm, err := mem.VirtualMemory()
	if err != nil || frameBytes <= 0 {
		return lo
	}
	return budget(vm.Available, frameBytes, lo, hi)
}

func budget(available uint64, frameBytes, lo, hi int) int {
	n := int(available / 4 / uint64(frameBytes))
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
