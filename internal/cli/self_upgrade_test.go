//go:build !docker

package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubRelease(t *testing.T, version string, found bool, err error) *[]string {
	t.Helper()
	origDetect, origUpdate, origExe := detectLatest, updateTo, executablePath
	t.Cleanup(func() {
		detectLatest, updateTo, executablePath = origDetect, origUpdate, origExe
	})

	var updates []string
	detectLatest = func(slug string) (*selfupdate.Release, bool, error) {
		assert.Equal(t, releaseRepository, slug)
		if err != nil || !found {
			return nil, found, err
		}
		return &selfupdate.Release{
			Version:  semver.MustParse(version),
			AssetURL: "https://example.com/folio_" + version + ".tar.gz",
		}, true, nil
	}
	updateTo = func(assetURL, cmdPath string) error {
		updates = append(updates, assetURL)
		return nil
	}
	executablePath = func() (string, error) { return "/usr/local/bin/folio", nil }
	return &updates
}

func TestSelfUpgradeRequiresReleaseBuild(t *testing.T) {
	var out bytes.Buffer
	for _, v := range []string{"", "dev"} {
		err := runSelfUpgrade(&out, strings.NewReader(""), v, false, true)
		assert.Error(t, err)
	}
	assert.Error(t, runSelfUpgrade(&out, strings.NewReader(""), "not-semver", false, true))
}

func TestSelfUpgradeAlreadyCurrent(t *testing.T) {
	updates := stubRelease(t, "1.2.0", true, nil)

	var out bytes.Buffer
	require.NoError(t, runSelfUpgrade(&out, strings.NewReader(""), "v1.2.0", false, true))
	assert.Contains(t, out.String(), "already up to date")
	assert.Empty(t, *updates)
}

func TestSelfUpgradeCheckOnly(t *testing.T) {
	updates := stubRelease(t, "1.3.0", true, nil)

	var out bytes.Buffer
	require.NoError(t, runSelfUpgrade(&out, strings.NewReader(""), "1.2.0", true, false))
	assert.Contains(t, out.String(), "v1.2.0 --> v1.3.0")
	assert.Empty(t, *updates)
}

func TestSelfUpgradeConfirmation(t *testing.T) {
	updates := stubRelease(t, "1.3.0", true, nil)

	var out bytes.Buffer
	require.NoError(t, runSelfUpgrade(&out, strings.NewReader("n\n"), "1.2.0", false, false))
	assert.Contains(t, out.String(), "Update cancelled.")
	assert.Empty(t, *updates)

	require.NoError(t, runSelfUpgrade(&out, strings.NewReader("\n"), "1.2.0", false, false))
	assert.Equal(t, []string{"https://example.com/folio_1.3.0.tar.gz"}, *updates)
	assert.Contains(t, out.String(), "Updated folio to v1.3.0")
}

func TestSelfUpgradeDetectFailures(t *testing.T) {
	stubRelease(t, "", false, errors.New("rate limited"))
	err := runSelfUpgrade(&bytes.Buffer{}, strings.NewReader(""), "1.0.0", false, true)
	assert.ErrorContains(t, err, "rate limited")

	stubRelease(t, "", false, nil)
	err = runSelfUpgrade(&bytes.Buffer{}, strings.NewReader(""), "1.0.0", false, true)
	assert.ErrorContains(t, err, "no releases found")
}
