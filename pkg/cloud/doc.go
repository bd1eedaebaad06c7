/*
The cloud package implements excluding files from cloud sync providers.

To exclude a path, it's moved out of the synced tree and a symbolic link is
left in its place. Cloud sync clients upload the link rather than the
contents, while local tools still find the file at its original path.

There are two ways of choosing where the original contents go:
1) Relocating -- The path is moved to the same relative location within the
   provider's target root, a directory that the provider doesn't sync.
   For example, `~/Dropbox/project/node_modules` is moved to
   `~/Dropbox Linked Files/project/node_modules`.
2) Linking in place -- The path is renamed with a suffix that the provider
   ignores, such as `node_modules.nosync` for iCloud Drive.

Restoring reads the link to find the relocated contents, removes the link,
moves the contents back, and removes any directories in the target root
that were left empty.

Link relationships aren't stored anywhere. The filesystem is the only source
of truth, which makes both operations safe to repeat.
*/
package cloud
