//go:build !linux && !windows

package handle

type unsupportedAPI struct{}

func defaultAPI() API {
	return unsupportedAPI{}
}

func (unsupportedAPI) Open(Type, int, Flags) (Handle, error) {
	return -1, ErrUnsupported
}

func (unsupportedAPI) Query(Handle, []byte, Query) (int, int, error) {
	return 0, 0, ErrUnsupported
}

func (unsupportedAPI) Close(Handle) error {
	return ErrUnsupported
}
