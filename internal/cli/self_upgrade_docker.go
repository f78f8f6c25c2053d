//go:build docker

package cli

// Container images are upgraded by pulling a new image, not in place.
func setupSelfUpgrade() {}
