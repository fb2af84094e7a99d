//go:build linux

package ringbuf

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// shmDir is where named regions are backed by real files, mirroring POSIX
// shared memory objects living under /dev/shm.
const shmDir = "/dev/shm"

func shmPath(name string) string {
	return filepath.Join(shmDir, "bitrpc-ring-"+name)
}

// mapRegion creates or opens the named shared-memory region according to
// mode and returns it mmapped at exactly size bytes, along with whether
// this call created it.
func mapRegion(name string, size int, mode CreateMode) (mem []byte, created bool, err error) {
	path := shmPath(name)
	fi, statErr := os.Stat(path)
	preexisting := statErr == nil

	flags := unix.O_RDWR
	switch mode {
	case CreateOnly:
		if preexisting {
			return nil, false, ErrAlreadyExists
		}
		flags |= unix.O_CREAT | unix.O_EXCL
	case CreateOrOpen:
		if !preexisting {
			flags |= unix.O_CREAT
		}
	case OpenOnly:
		if !preexisting {
			return nil, false, ErrNotFound
		}
	}

	fd, err := unix.Open(path, flags, 0600)
	if err != nil {
		return nil, false, err
	}
	defer unix.Close(fd)

	created = !preexisting
	mapSize := size
	if created {
		if err := unix.Ftruncate(fd, int64(size)); err != nil {
			return nil, false, err
		}
	} else {
		// An existing region's real size may differ from the caller's
		// request (e.g. Open doesn't know the capacity up front); map the
		// whole thing so the header's own Capacity field is authoritative.
		mapSize = int(fi.Size())
	}

	mem, err = unix.Mmap(fd, 0, mapSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, false, err
	}
	return mem, created, nil
}

func unmapRegion(mem []byte) error {
	if mem == nil {
		return nil
	}
	return unix.Munmap(mem)
}

func removeRegion(name string) error {
	err := unix.Unlink(shmPath(name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
