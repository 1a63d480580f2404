package parse

import (
	"strings"
	"testing"

	"github.com/darshan-rambhia/whm/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lsblkOutput = `sda                         8:0    0 465.8G  0 disk
├─sda1                      8:1    0   512M  0 part /boot/efi
├─sda2                      8:2    0   732M  0 part /boot
└─sda3                      8:3    0 464.6G  0 part
  ├─ubuntu--vg-root       253:0    0 463.6G  0 lvm  /
  └─ubuntu--vg-swap_1     253:1    0   980M  0 lvm  [SWAP]
sdb                         8:16   0   1.8T  0 disk
└─sdb1                      8:17   0   1.8T  0 part /srv
sr0                        11:0    1  1024M  0 rom
`

func TestDriveTree_FlatFixture(t *testing.T) {
	text := "sda    8:0  0 100G 0 disk\n├─sda1 8:1  0  50G 0 part /\n└─sda2 8:2  0  50G 0 part /home\n"
	tree, err := DriveTree(text)
	require.NoError(t, err)
	require.Len(t, tree, 1)

	sda := tree["sda"]
	require.NotNil(t, sda)
	assert.Equal(t, "disk", sda.Type)
	require.Len(t, sda.Children, 2)
	assert.Contains(t, sda.Children, "sda1")
	assert.Contains(t, sda.Children, "sda2")
	for _, c := range sda.Children {
		assert.Nil(t, c.Children)
	}
	assert.Equal(t, "/home", sda.Children["sda2"].Mount)
}

func TestDriveTree_FullListing(t *testing.T) {
	tree, err := DriveTree(lsblkOutput)
	require.NoError(t, err)
	assert.Equal(t, []string{"sda", "sdb", "sr0"}, model.SortedKeys(tree))

	sda := tree["sda"]
	assert.Equal(t, "465.8G", sda.Size)
	assert.Equal(t, "", sda.Mount)
	assert.Equal(t, []string{"sda1", "sda2", "sda3"}, model.SortedKeys(sda.Children))
	assert.Equal(t, "/boot/efi", sda.Children["sda1"].Mount)

	sda3 := sda.Children["sda3"]
	require.Len(t, sda3.Children, 2)
	root := sda3.Children["ubuntu--vg-root"]
	require.NotNil(t, root)
	assert.Equal(t, "lvm", root.Type)
	assert.Equal(t, "/", root.Mount)
	assert.Equal(t, "[SWAP]", sda3.Children["ubuntu--vg-swap_1"].Mount)

	// Returning to depth 0 after depth 2 starts a new root.
	assert.Equal(t, "/srv", tree["sdb"].Children["sdb1"].Mount)
	assert.Equal(t, "rom", tree["sr0"].Type)
	assert.Nil(t, tree["sr0"].Children)
}

func TestDriveTree_AuntAfterGrandchild(t *testing.T) {
	text := strings.Join([]string{
		"sda       8:0 0 10G 0 disk",
		"├─sda1    8:1 0  5G 0 part",
		"│ └─vg-a 253:0 0  5G 0 lvm /",
		"└─sda2    8:2 0  5G 0 part /data",
	}, "\n")
	tree, err := DriveTree(text)
	require.NoError(t, err)

	sda := tree["sda"]
	require.Len(t, sda.Children, 2)
	assert.Contains(t, sda.Children["sda1"].Children, "vg-a")
	assert.Nil(t, sda.Children["sda2"].Children)
	assert.Equal(t, "/data", sda.Children["sda2"].Mount)
}

func TestDriveTree_ASCIIGlyphs(t *testing.T) {
	text := "sda    8:0 0 10G 0 disk\n|-sda1 8:1 0 5G 0 part /\n`-sda2 8:2 0 5G 0 part\n"
	tree, err := DriveTree(text)
	require.NoError(t, err)
	assert.Len(t, tree["sda"].Children, 2)
}

func TestDriveTree_Malformed(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{
			name: "depth jump",
			text: "sda 8:0 0 10G 0 disk\n  └─vg 253:0 0 5G 0 lvm /\n",
			want: ErrDepthJump,
		},
		{
			name: "first line nested",
			text: "└─sda1 8:1 0 5G 0 part /\n",
			want: ErrOrphanChild,
		},
		{
			name: "odd indentation",
			text: "sda 8:0 0 10G 0 disk\n─sda1 8:1 0 5G 0 part\n",
			want: ErrOddIndent,
		},
		{
			name: "missing columns",
			text: "sda 8:0 0 10G\n",
			want: ErrShortRow,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DriveTree(tt.text)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDriveTree_Empty(t *testing.T) {
	tree, err := DriveTree("")
	require.NoError(t, err)
	assert.Empty(t, tree)
}

func FuzzDriveTree(f *testing.F) {
	f.Add(lsblkOutput)
	f.Add("a 1 2 3 4 5\n└─b 1 2 3 4 5\n")
	f.Fuzz(func(t *testing.T, text string) {
		tree, err := DriveTree(text)
		if err != nil {
			return
		}
		for name, n := range tree {
			if n.Name != name {
				t.Fatalf("root %q stored under %q", n.Name, name)
			}
		}
	})
}
