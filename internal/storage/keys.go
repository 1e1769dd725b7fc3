// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import "path"

// featureImagePrefix is the key namespace for post feature images.
const featureImagePrefix = "blog/"

// FeatureImageKey derives the storage key for a post's feature image:
// "blog/<post-slug>-<original-filename>". The key is deterministic so that
// re-publishing a post's image replaces the stored object in place.
// Any directory components in the uploaded filename are stripped.
func FeatureImageKey(postSlug, filename string) string {
	return featureImagePrefix + postSlug + "-" + path.Base(filename)
}
