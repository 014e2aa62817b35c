package tts

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/abhandary/JLPT/internal/audio"
)

// CachingProvider stores synthesized clips as WAV files keyed by provider,
// backend settings, voice and text, so re-running a word list does not call
// the backend again
type CachingProvider struct {
	provider Provider
	cacheDir string
	settings string
	log      zerolog.Logger
}

// NewCachingProvider wraps provider with a cache rooted at cacheDir
func NewCachingProvider(provider Provider, cacheDir string, log zerolog.Logger) (*CachingProvider, error) {
	if cacheDir == "" {
		return nil, fmt.Errorf("cache directory is required")
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &CachingProvider{provider: provider, cacheDir: cacheDir, log: log}, nil
}

// Synthesize returns the cached clip when present, otherwise asks the
// wrapped provider and stores the result
func (p *CachingProvider) Synthesize(ctx context.Context, text string, voice Voice) (*audio.Clip, error) {
	cacheFile := p.getCacheFilePath(text, voice)
	if clip, err := audio.ReadWAVFile(cacheFile); err == nil {
		p.log.Debug().Str("text", text).Str("voice", voice.Name).Msg("speech cache hit")
		return clip, nil
	}

	clip, err := p.provider.Synthesize(ctx, text, voice)
	if err != nil {
		return nil, err
	}

	if err := audio.WriteWAVFile(cacheFile, clip); err != nil {
		// a broken cache entry must not shadow the next request
		os.Remove(cacheFile)
		p.log.Warn().Err(err).Str("file", cacheFile).Msg("failed to write speech cache")
	}
	return clip, nil
}

// getCacheFilePath generates a cache file path for the given text and voice
func (p *CachingProvider) getCacheFilePath(text string, voice Voice) string {
	h := md5.New()
	h.Write([]byte(p.provider.Name()))
	h.Write([]byte{0})
	h.Write([]byte(p.settings))
	h.Write([]byte{0})
	h.Write([]byte(voice.Name))
	h.Write([]byte{0})
	h.Write([]byte(text))
	hash := hex.EncodeToString(h.Sum(nil))

	// Use first 2 chars as subdirectory for better file system performance
	return filepath.Join(p.cacheDir, hash[:2], hash[2:]+".wav")
}

// ClearCache removes all cached audio files
func (p *CachingProvider) ClearCache() error {
	return os.RemoveAll(p.cacheDir)
}

// CacheStats returns the number and total size of cached files
func (p *CachingProvider) CacheStats() (fileCount int, totalSize int64, err error) {
	err = filepath.Walk(p.cacheDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			fileCount++
			totalSize += info.Size()
		}
		return nil
	})
	return fileCount, totalSize, err
}

// Name returns the wrapped provider name
func (p *CachingProvider) Name() string {
	return p.provider.Name()
}

// IsAvailable delegates to the wrapped provider
func (p *CachingProvider) IsAvailable() error {
	return p.provider.IsAvailable()
}
