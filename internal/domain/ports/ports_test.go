package ports

import (
	"context"
	"io"
	"reflect"
	"testing"
	"time"

	"videoingest/internal/domain"
)

func TestMetadataStoreInterface(t *testing.T) {
	typ := reflect.TypeOf((*MetadataStore)(nil)).Elem()

	assertMethod(t, typ, "Create", []reflect.Type{contextType(), reflect.TypeOf(domain.Video{})}, []reflect.Type{errorType()})
	assertMethod(t, typ, "Update", []reflect.Type{contextType(), reflect.TypeOf(domain.Video{})}, []reflect.Type{errorType()})
	assertMethod(t, typ, "Get", []reflect.Type{contextType(), reflect.TypeOf(domain.VideoID(""))}, []reflect.Type{reflect.TypeOf(domain.Video{}), errorType()})
	assertMethod(t, typ, "List", []reflect.Type{contextType(), reflect.TypeOf(domain.VideoFilter{})}, []reflect.Type{reflect.SliceOf(reflect.TypeOf(domain.Video{})), errorType()})
	assertMethod(t, typ, "Delete", []reflect.Type{contextType(), reflect.TypeOf(domain.VideoID(""))}, []reflect.Type{errorType()})
}

func TestBlobReaderInterface(t *testing.T) {
	typ := reflect.TypeOf((*BlobReader)(nil)).Elem()

	assertMethod(t, typ, "Size", nil, []reflect.Type{reflect.TypeOf(int64(0))})
	assertMethod(t, typ, "ReadAt", []reflect.Type{contextType(), reflect.TypeOf([]byte{}), reflect.TypeOf(int64(0))}, []reflect.Type{reflect.TypeOf(0), errorType()})
	assertMethod(t, typ, "Close", nil, []reflect.Type{errorType()})
}

func TestBlobStoreInterface(t *testing.T) {
	typ := reflect.TypeOf((*BlobStore)(nil)).Elem()

	assertMethod(t, typ, "Open", []reflect.Type{contextType(), reflect.TypeOf("")}, []reflect.Type{
		reflect.TypeOf((*BlobReader)(nil)).Elem(),
		errorType(),
	})
}

func TestBlobWriterInterface(t *testing.T) {
	typ := reflect.TypeOf((*BlobWriter)(nil)).Elem()

	assertMethod(t, typ, "Write", []reflect.Type{
		contextType(),
		reflect.TypeOf(""),
		reflect.TypeOf((*io.Reader)(nil)).Elem(),
		reflect.TypeOf(int64(0)),
	}, []reflect.Type{errorType()})
}

func TestProbeInterface(t *testing.T) {
	typ := reflect.TypeOf((*Probe)(nil)).Elem()

	assertMethod(t, typ, "Probe", []reflect.Type{
		contextType(),
		reflect.TypeOf((*BlobReader)(nil)).Elem(),
		reflect.TypeOf(""),
	}, []reflect.Type{reflect.TypeOf(domain.ProbeResult{}), errorType()})
}

func TestEventBusInterface(t *testing.T) {
	typ := reflect.TypeOf((*EventBus)(nil)).Elem()

	assertMethod(t, typ, "Publish", []reflect.Type{reflect.TypeOf(domain.TenantID("")), reflect.TypeOf(Event{})}, nil)
	assertMethod(t, typ, "Subscribe", []reflect.Type{reflect.TypeOf(domain.TenantID(""))}, []reflect.Type{
		reflect.TypeOf((*Subscription)(nil)).Elem(),
	})
}

func TestPipelineInterface(t *testing.T) {
	typ := reflect.TypeOf((*Pipeline)(nil)).Elem()

	assertMethod(t, typ, "Schedule", []reflect.Type{contextType(), reflect.TypeOf(domain.VideoID(""))}, []reflect.Type{
		reflect.TypeOf(ScheduleAccepted), errorType(),
	})
	assertMethod(t, typ, "Shutdown", []reflect.Type{reflect.TypeOf(time.Duration(0))}, nil)
}

func assertMethod(t *testing.T, typ reflect.Type, name string, in []reflect.Type, out []reflect.Type) {
	t.Helper()
	method, ok := typ.MethodByName(name)
	if !ok {
		t.Fatalf("missing method %s", name)
	}

	wantIn := len(in)
	if method.Type.NumIn() != wantIn {
		t.Fatalf("%s NumIn = %d, want %d", name, method.Type.NumIn(), wantIn)
	}
	for i, typIn := range in {
		if got := method.Type.In(i); got != typIn {
			t.Fatalf("%s In[%d] = %s, want %s", name, i, got, typIn)
		}
	}

	if method.Type.NumOut() != len(out) {
		t.Fatalf("%s NumOut = %d, want %d", name, method.Type.NumOut(), len(out))
	}
	for i, typOut := range out {
		if got := method.Type.Out(i); got != typOut {
			t.Fatalf("%s Out[%d] = %s, want %s", name, i, got, typOut)
		}
	}
}

func contextType() reflect.Type {
	return reflect.TypeOf((*context.Context)(nil)).Elem()
}

func errorType() reflect.Type {
	return reflect.TypeOf((*error)(nil)).Elem()
}
