// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drillbit Contributors

//go:build integration

package install_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/drillbit/drillbit/internal/backend"
	"github.com/drillbit/drillbit/internal/credential"
	"github.com/drillbit/drillbit/internal/installer"
	"github.com/drillbit/drillbit/internal/manifest"
	"github.com/drillbit/drillbit/pkg/errutil"
)

// fakeRoblox serves the asset API, asset downloads and release files.
type fakeRoblox struct {
	srv        *httptest.Server
	assets     map[string][]byte
	releases   map[string][]byte
	metaStatus atomic.Int32
	requests   atomic.Int32
}

func newFakeRoblox() *fakeRoblox {
	f := &fakeRoblox{assets: map[string][]byte{}, releases: map[string][]byte{}}
	f.metaStatus.Store(http.StatusOK)
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/asset", func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		if r.Header.Get("Cookie") != ".ROBLOSECURITY=it-cookie" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if status := int(f.metaStatus.Load()); status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		id := r.URL.Query().Get("id")
		if _, ok := f.assets[id]; !ok {
			_, _ = fmt.Fprint(w, `{"locations":[]}`)
			return
		}
		_, _ = fmt.Fprintf(w, `{"locations":[{"location":"%s/cdn/%s"}]}`, f.srv.URL, id)
	})
	mux.HandleFunc("/cdn/", func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		_, _ = w.Write(f.assets[filepath.Base(r.URL.Path)])
	})
	mux.HandleFunc("/releases/", func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		data, ok := f.releases[filepath.Base(r.URL.Path)]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write(data)
	})
	f.srv = httptest.NewServer(mux)
	return f
}

func writeProject(dir, manifestTOML string, files map[string]string) {
	Expect(os.WriteFile(filepath.Join(dir, manifest.FileName), []byte(manifestTOML), 0o600)).To(Succeed())
	for rel, content := range files {
		p := filepath.Join(dir, rel)
		Expect(os.MkdirAll(filepath.Dir(p), 0o750)).To(Succeed())
		Expect(os.WriteFile(p, []byte(content), 0o600)).To(Succeed())
	}
}

func listDir(dir string) []string {
	entries, err := os.ReadDir(dir)
	Expect(err).NotTo(HaveOccurred())
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

var _ = Describe("Installing a manifest", func() {
	var (
		ctx     context.Context
		project string
		dest    string
		fake    *fakeRoblox
	)

	install := func() (*installer.Report, error) {
		m, err := manifest.Read(project)
		if err != nil {
			return nil, err
		}
		reg := backend.NewRegistry(backend.DefaultFactories(backend.Options{
			ManifestDir: m.Dir,
			HTTPClient:  fake.srv.Client(),
			AssetAPI:    fake.srv.URL,
			Credentials: credential.Static("it-cookie"),
		}))
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		return installer.New(dest, "game", reg, installer.WithLogger(logger)).Run(ctx, m)
	}

	BeforeEach(func() {
		ctx = context.Background()
		project = GinkgoT().TempDir()
		dest = GinkgoT().TempDir()
		fake = newFakeRoblox()
		DeferCleanup(fake.srv.Close)
	})

	Describe("mixed sources", func() {
		BeforeEach(func() {
			fake.assets["948084095"] = []byte("<roblox>tagger</roblox>")
			fake.releases["cmdr.rbxm"] = []byte("cmdr release")
			writeProject(project, fmt.Sprintf(`
[plugins]
tagger = { cloud = 948084095 }
cmdr = { github = "%s/releases/v1/cmdr.rbxm" }
helper = { local = "plugins/helper.luau" }
`, fake.srv.URL), map[string]string{"plugins/helper.luau": "return 'helper'"})
		})

		It("installs every plugin under its derived name", func() {
			report, err := install()
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Count(installer.OutcomeWritten)).To(Equal(3))
			Expect(listDir(dest)).To(ConsistOf(
				"game_tagger_948084095.rbxm",
				"game_cmdr.rbxm",
				"game_helper.lua",
			))

			data, err := os.ReadFile(filepath.Join(dest, "game_tagger_948084095.rbxm"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("<roblox>tagger</roblox>"))
		})

		It("writes nothing on the second run", func() {
			_, err := install()
			Expect(err).NotTo(HaveOccurred())

			report, err := install()
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Count(installer.OutcomeWritten)).To(BeZero())
			Expect(report.Count(installer.OutcomeSkipped)).To(Equal(3))
		})
	})

	Describe("duplicate local files", func() {
		It("writes the content once and skips the copy", func() {
			writeProject(project, `
[plugins]
a = { local = "a.rbxm" }
b = { local = "copy/b.rbxm" }
`, map[string]string{"a.rbxm": "same", "copy/b.rbxm": "same"})

			report, err := install()
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Count(installer.OutcomeWritten)).To(Equal(1))
			Expect(report.Count(installer.OutcomeSkipped)).To(Equal(1))
			Expect(listDir(dest)).To(ConsistOf("game_a.rbxm"))
		})
	})

	Describe("failures", func() {
		It("rejects a bad local extension before fetching anything", func() {
			writeProject(project, fmt.Sprintf(`
[plugins]
a = { github = "%s/releases/v1/a.rbxm" }
z = { local = "z.txt" }
`, fake.srv.URL), map[string]string{"z.txt": "text"})

			_, err := install()
			Expect(err).To(HaveOccurred())
			Expect(errutil.Code(err)).To(Equal("MANIFEST_INVALID_EXTENSION"))
			Expect(fake.requests.Load()).To(BeZero())
			Expect(listDir(dest)).To(BeEmpty())
		})

		It("writes nothing when the asset API refuses", func() {
			fake.metaStatus.Store(http.StatusForbidden)
			fake.assets["1"] = []byte("x")
			writeProject(project, `
[plugins]
asset = { cloud = 1 }
`, nil)

			_, err := install()
			Expect(err).To(HaveOccurred())
			Expect(errutil.Code(err)).To(Equal("TRANSPORT_BAD_STATUS"))
			Expect(listDir(dest)).To(BeEmpty())
		})

		It("aborts when the asset has no download locations", func() {
			writeProject(project, `
[plugins]
asset = { cloud = 404 }
`, nil)

			_, err := install()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("no download locations found"))
			Expect(errutil.Code(err)).To(Equal("ASSET_NO_LOCATIONS"))
		})

		It("keeps plugins installed before a failing one", func() {
			fake.releases["a.rbxm"] = []byte("first")
			writeProject(project, fmt.Sprintf(`
[plugins]
a = { github = "%[1]s/releases/v1/a.rbxm" }
b = { github = "%[1]s/releases/v1/missing.rbxm" }
`, fake.srv.URL), nil)

			report, err := install()
			Expect(err).To(HaveOccurred())
			Expect(report.Results).To(HaveLen(1))
			Expect(listDir(dest)).To(ConsistOf("game_a.rbxm"))
		})
	})
})
