// Copyright 2013 Richard Lehane. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package olecf implements a read-only decoder for the OLE Compound File
// Binary format (also called OLE2/CFB/Structured Storage) underlying
// pre-2007 Microsoft Office documents, Outlook .msg files, Windows
// thumbcaches and other legacy Windows artifacts. A compound file is
// exposed as a tree of named Items — storages behave like directories,
// streams like files — with random-access reads into any stream.
//
// Example:
//
//	src, _ := olecf.OpenPath("test.doc")
//	f, err := olecf.Open(src)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer f.Close()
//	item, err := f.ItemByPath("/WordDocument")
//	if err == nil {
//		buf := make([]byte, item.Size())
//		f.ReadAt(item, 0, buf)
//	}
package olecf

import (
	"github.com/richardlehane/olecf/internal/notify"
)

// File is the root entity: the byte source, parsed header,
// reconstructed allocation tables, directory tree and sector cache. It is
// created by Open and destroyed by Close; it is immutable thereafter
// (reads only). A File is not safe for concurrent use by multiple
// goroutines unless callers add their own synchronization.
type File struct {
	src      Source
	header   *headerParams
	tree     *directoryTree
	reader   *sectorReader
	notifier *notify.Logger
	asciiCP  int16

	root *Item
}

type options struct {
	notifier      *notify.Logger
	cacheSize     int
	maxChainLen   int
	asciiCodePage int16
}

// Option configures a File at Open time.
type Option func(*options)

// WithNotifier routes non-fatal diagnostics (orphan directory entries) to l
// instead of the package default (discard).
func WithNotifier(l *notify.Logger) Option {
	return func(o *options) { o.notifier = l }
}

// WithSectorCacheSize bounds the number of decoded regular sectors kept in
// the LRU cache. 0 disables caching.
func WithSectorCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// WithMaxChainLength overrides the maximum number of sectors a single chain
// walk may traverse before it is treated as corrupt. Defaults to the total
// sector count implied by the header.
func WithMaxChainLength(n int) Option {
	return func(o *options) { o.maxChainLen = n }
}

// WithASCIICodePage sets the fallback code page reported by
// File.ASCIICodePage, for callers to pass as propset.Parse's
// fallbackCodePage (used when a section has no explicit CodePage (id=1)
// property). Defaults to 1252 (Windows-1252).
func WithASCIICodePage(cp int16) Option {
	return func(o *options) { o.asciiCodePage = cp }
}

// Open parses src as an OLE compound file: header, allocation tables,
// directory tree, and mini-stream. The returned File owns src and must be
// closed with Close.
func Open(src Source, opts ...Option) (*File, error) {
	o := options{
		notifier:      notify.Default(),
		cacheSize:     defaultSectorCacheSize,
		asciiCodePage: 1252,
	}
	for _, fn := range opts {
		fn(&o)
	}

	h, err := parseHeader(src)
	if err != nil {
		return nil, err
	}

	msat, err := buildMSAT(src, h)
	if err != nil {
		return nil, err
	}
	sat, err := buildSAT(src, h, msat)
	if err != nil {
		return nil, err
	}
	minifat, err := buildMiniFAT(src, h, sat)
	if err != nil {
		return nil, err
	}

	maxChain := o.maxChainLen
	if maxChain <= 0 {
		maxChain = len(sat)
	}
	sr := newSectorReader(src, h.sectorSize, sat, minifat, o.cacheSize, maxChain)

	entries, err := loadDirectoryEntries(sr, h)
	if err != nil {
		return nil, err
	}
	tree, err := buildDirectoryTree(entries, o.notifier)
	if err != nil {
		return nil, err
	}

	if err := sr.setRootChain(entries[0].startingSectorLoc); err != nil {
		return nil, err
	}

	f := &File{
		src:      src,
		header:   h,
		tree:     tree,
		reader:   sr,
		notifier: o.notifier,
		asciiCP:  o.asciiCodePage,
	}
	f.root = &Item{f: f, idx: 0, entry: entries[0]}
	return f, nil
}

// Close releases the underlying byte source.
func (f *File) Close() error {
	return f.src.Close()
}

// Root returns the root item of the tree.
func (f *File) Root() *Item { return f.root }

// Abort sets the cooperative cancellation flag; any in-flight or subsequent
// read returns KindAborted promptly.
func (f *File) Abort() { f.reader.signalAbort() }

// FormatVersion reports "3.x" for 512-byte-sector files or "4.x" for
// 4096-byte-sector files.
func (f *File) FormatVersion() string {
	if f.header.majorVersion == 4 {
		return "4.x"
	}
	return "3.x"
}

// SectorSize returns the regular sector size in bytes (512 or 4096).
func (f *File) SectorSize() uint32 { return f.header.sectorSize }

// MiniSectorSize returns the mini-sector size in bytes (always 64).
func (f *File) MiniSectorSize() uint32 { return f.header.miniSectorSize }

// ASCIICodePage returns the stored fallback code page for ASCII
// property-set strings that have no explicit CodePage property. The olecf
// package does not decode property strings itself; propset.Parse receives
// the fallback as an argument.
func (f *File) ASCIICodePage() int16 { return f.asciiCP }

// SetASCIICodePage overrides the fallback ASCII code page.
func (f *File) SetASCIICodePage(cp int16) { f.asciiCP = cp }
