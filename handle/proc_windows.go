//go:build windows

package handle

import (
	"fmt"
	"sync"

	"github.com/0xrawsec/golang-win32/win32"
	kernel32 "github.com/0xrawsec/golang-win32/win32/kernel32"
	windows "golang.org/x/sys/windows"
)

// win32API walks the address space of a process with VirtualQueryEx. Image
// regions are named after the module that contains them.
type win32API struct {
	mu      sync.Mutex
	next    Handle
	handles map[Handle]win32.HANDLE
}

func defaultAPI() API {
	return &win32API{handles: make(map[Handle]win32.HANDLE)}
}

func (w *win32API) Open(typ Type, id int, _ Flags) (Handle, error) {
	if typ != TypeProcess {
		return -1, ErrInvalidType
	}
	h, err := kernel32.OpenProcess(windows.PROCESS_QUERY_INFORMATION|windows.PROCESS_VM_READ, win32.BOOL(0), win32.DWORD(id))
	if err != nil {
		return -1, fmt.Errorf("open process %d: %w", id, err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.next++
	w.handles[w.next] = h
	return w.next, nil
}

func (w *win32API) Query(h Handle, buf []byte, q Query) (int, int, error) {
	if q != QueryVMRegions {
		return 0, 0, ErrInvalidQuery
	}
	w.mu.Lock()
	ph, ok := w.handles[h]
	w.mu.Unlock()
	if !ok {
		return 0, 0, ErrInvalidHandle
	}
	return fill(buf, EncodeRegions(queryRegions(ph)))
}

func (w *win32API) Close(h Handle) error {
	w.mu.Lock()
	ph, ok := w.handles[h]
	delete(w.handles, h)
	w.mu.Unlock()
	if !ok {
		return ErrInvalidHandle
	}
	return kernel32.CloseHandle(ph)
}

type imageRange struct {
	base, size uint64
	name       string
}

func processImages(ph win32.HANDLE) []imageRange {
	moduleHandles, err := kernel32.EnumProcessModules(ph)
	if err != nil {
		return nil
	}
	images := make([]imageRange, 0, len(moduleHandles))
	for _, moduleHandle := range moduleHandles {
		name, err := kernel32.GetModuleFilenameExW(ph, moduleHandle)
		if err != nil {
			continue
		}
		info, err := kernel32.GetModuleInformation(ph, moduleHandle)
		if err != nil {
			continue
		}
		images = append(images, imageRange{
			base: uint64(info.LpBaseOfDll),
			size: uint64(info.SizeOfImage),
			name: name,
		})
	}
	return images
}

func queryRegions(ph win32.HANDLE) []Region {
	images := processImages(ph)
	var (
		regions []Region
		addr    win32.LPCVOID
	)
	for {
		memInfo, err := kernel32.VirtualQueryEx(ph, addr)
		if err != nil || memInfo.RegionSize == 0 {
			break
		}
		addr += win32.LPCVOID(memInfo.RegionSize)

		if memInfo.State != win32.MEM_COMMIT {
			continue
		}
		r := Region{
			Start:  uint64(memInfo.BaseAddress),
			Length: uint64(memInfo.RegionSize),
			Prot:   pageProt(uint32(memInfo.Protect)),
		}
		for _, img := range images {
			if r.Start >= img.base && r.Start < img.base+img.size {
				r.Name = img.name
				r.Offset = r.Start - img.base
				break
			}
		}
		regions = append(regions, r)
	}
	return regions
}

func pageProt(protect uint32) Prot {
	if protect&windows.PAGE_GUARD != 0 {
		return 0
	}
	switch protect &^ (windows.PAGE_NOCACHE | windows.PAGE_WRITECOMBINE) {
	case windows.PAGE_READONLY:
		return ProtRead
	case windows.PAGE_READWRITE, windows.PAGE_WRITECOPY:
		return ProtRead | ProtWrite
	case windows.PAGE_EXECUTE:
		return ProtExec
	case windows.PAGE_EXECUTE_READ:
		return ProtRead | ProtExec
	case windows.PAGE_EXECUTE_READWRITE, windows.PAGE_EXECUTE_WRITECOPY:
		return ProtRead | ProtWrite | ProtExec
	}
	return 0
}
