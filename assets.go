package main

import (
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AssetNamespace selects the storage bucket and reference form for a
// localized asset. In-body images and featured images live in separate
// directories and are referenced differently from documents.
type AssetNamespace int

const (
	NamespaceContent AssetNamespace = iota
	NamespaceFeatured
)

const (
	contentImageDir   = "images/blog"
	featuredImageDir  = "assets/images/blog_featured"
	contentRefPrefix  = "/images/blog/"
	featuredRefPrefix = "~/assets/images/blog_featured/"

	assetSuffixLength = 8
	maxSaneExtension  = 5
)

// ImageLocalizer turns a remote image URL into a reference usable from
// document content.
type ImageLocalizer interface {
	Localize(remoteURL, slug string, ns AssetNamespace) string
}

// AssetLocalizer downloads remote images into namespaced local storage under
// collision-free names.
type AssetLocalizer struct {
	fetcher   ResourceFetcher
	outputDir string
	logger    *zap.Logger
}

// NewAssetLocalizer creates a localizer storing files under outputDir.
func NewAssetLocalizer(fetcher ResourceFetcher, outputDir string, logger *zap.Logger) *AssetLocalizer {
	return &AssetLocalizer{
		fetcher:   fetcher,
		outputDir: outputDir,
		logger:    logger,
	}
}

// Localize fetches remoteURL and stores it under ns as
// {slug}-{random 8 chars}{ext}. On any failure the remote URL is returned
// unchanged so the document still carries a usable reference.
func (l *AssetLocalizer) Localize(remoteURL, slug string, ns AssetNamespace) string {
	body, contentType, err := l.fetcher.FetchResource(remoteURL)
	if err != nil {
		l.logger.Warn("image download failed, keeping remote reference",
			zap.String("url", remoteURL),
			zap.Error(err))
		return remoteURL
	}

	name := slug + "-" + randomSuffix() + imageExtension(contentType, remoteURL)

	dir := filepath.Join(l.outputDir, contentImageDir)
	ref := contentRefPrefix + name
	if ns == NamespaceFeatured {
		dir = filepath.Join(l.outputDir, featuredImageDir)
		ref = featuredRefPrefix + name
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		l.logger.Warn("creating asset directory failed, keeping remote reference",
			zap.String("dir", dir),
			zap.Error(err))
		return remoteURL
	}
	if err := os.WriteFile(filepath.Join(dir, name), body, 0644); err != nil {
		l.logger.Warn("writing asset failed, keeping remote reference",
			zap.String("file", name),
			zap.Error(err))
		return remoteURL
	}

	l.logger.Debug("localized image",
		zap.String("url", remoteURL),
		zap.String("file", name))
	return ref
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:assetSuffixLength]
}

// imageExtension derives a file extension from the declared content type,
// falling back to the URL path, then to jpeg.
func imageExtension(contentType, remoteURL string) string {
	switch {
	case strings.Contains(contentType, "image/jpeg"):
		return ".jpg"
	case strings.Contains(contentType, "image/png"):
		return ".png"
	case strings.Contains(contentType, "image/gif"):
		return ".gif"
	case strings.Contains(contentType, "image/webp"):
		return ".webp"
	}

	if parsed, err := url.Parse(remoteURL); err == nil {
		ext := path.Ext(parsed.Path)
		if trimmed := strings.TrimPrefix(ext, "."); trimmed != "" && len(trimmed) <= maxSaneExtension {
			return ext
		}
	}
	return ".jpg"
}
