package exiftool_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"datefixer/internal/exiftool"
	"datefixer/internal/services"
)

type stubExecutor struct {
	out   exiftool.Output
	err   error
	calls [][]string
}

func (s *stubExecutor) Execute(_ context.Context, args ...string) (exiftool.Output, error) {
	s.calls = append(s.calls, append([]string(nil), args...))
	return s.out, s.err
}

func TestReadDateArguments(t *testing.T) {
	stub := &stubExecutor{out: exiftool.Output{Stdout: "2019-03-04 05:06:07\n"}}
	gw := exiftool.NewGateway(stub, exiftool.WithIgnoreMinorErrors(true))

	got, ok, err := gw.ReadDate(context.Background(), "/photos/a.jpg")
	if err != nil || !ok {
		t.Fatalf("ReadDate = %v, %v, %v", got, ok, err)
	}
	if want := time.Date(2019, 3, 4, 5, 6, 7, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("ReadDate = %s, want %s", got, want)
	}
	want := [][]string{{"-DateTimeOriginal", "-d", "%Y-%m-%d %H:%M:%S", "-s3", "-m", "/photos/a.jpg"}}
	if diff := cmp.Diff(want, stub.calls); diff != "" {
		t.Fatalf("arguments mismatch (-want +got):\n%s", diff)
	}
}

func TestReadDateAbsent(t *testing.T) {
	gw := exiftool.NewGateway(&stubExecutor{out: exiftool.Output{Stdout: "\n"}})
	_, ok, err := gw.ReadDate(context.Background(), "a.jpg")
	if err != nil || ok {
		t.Fatalf("expected absent date, got ok=%v err=%v", ok, err)
	}
}

func TestReadDateFailures(t *testing.T) {
	transport := services.Wrap(services.ErrTransport, "exiftool", "execute", "", errors.New("broken pipe"))
	cases := []struct {
		name   string
		stub   *stubExecutor
		marker error
	}{
		{name: "unparsable", stub: &stubExecutor{out: exiftool.Output{Stdout: "0000:00:00 00:00:00\n"}}, marker: services.ErrProtocol},
		{name: "tool error", stub: &stubExecutor{out: exiftool.Output{Stderr: "Error: File not found - a.jpg\n"}}, marker: services.ErrExternalTool},
		{name: "transport", stub: &stubExecutor{err: transport}, marker: services.ErrTransport},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := exiftool.NewGateway(tc.stub).ReadDate(context.Background(), "a.jpg")
			if !errors.Is(err, tc.marker) {
				t.Fatalf("expected %v, got %v", tc.marker, err)
			}
		})
	}
}

func TestReadDateIgnoresWarnings(t *testing.T) {
	stub := &stubExecutor{out: exiftool.Output{
		Stdout: "2020-01-01 00:00:00\n",
		Stderr: "Warning: [minor] Bad MakerNotes offset\n",
	}}
	_, ok, err := exiftool.NewGateway(stub).ReadDate(context.Background(), "a.jpg")
	if err != nil || !ok {
		t.Fatalf("warning should not fail the read: ok=%v err=%v", ok, err)
	}
}

func TestWriteDateResults(t *testing.T) {
	ts := time.Date(2021, 6, 21, 12, 59, 30, 0, time.UTC)
	cases := []struct {
		name    string
		out     exiftool.Output
		wantErr bool
	}{
		{name: "updated", out: exiftool.Output{Stdout: "    1 image files updated\n"}},
		{name: "unchanged", out: exiftool.Output{Stdout: "    0 image files updated\n    1 image files unchanged\n"}},
		{name: "nothing updated", out: exiftool.Output{Stdout: "    0 image files updated\n"}, wantErr: true},
		{name: "error line", out: exiftool.Output{Stdout: "    1 image files updated\n", Stderr: "Error: Not a valid JPEG\n"}, wantErr: true},
		{name: "empty", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubExecutor{out: tc.out}
			err := exiftool.NewGateway(stub).WriteDate(context.Background(), "b.jpg", ts)
			if tc.wantErr {
				if !errors.Is(err, services.ErrExternalTool) {
					t.Fatalf("expected tool error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("WriteDate: %v", err)
			}
			want := []string{"-overwrite_original", "-DateTimeOriginal=2021-06-21 12:59:30", "b.jpg"}
			if diff := cmp.Diff(want, stub.calls[0]); diff != "" {
				t.Fatalf("arguments mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRepairArguments(t *testing.T) {
	stub := &stubExecutor{out: exiftool.Output{Stdout: "    1 image files updated\n"}}
	if err := exiftool.NewGateway(stub).Repair(context.Background(), "c.jpg"); err != nil {
		t.Fatalf("Repair: %v", err)
	}
	want := []string{"-all=", "-tagsfromfile", "@", "-all:all", "-unsafe", "-icc_profile", "-overwrite_original", "c.jpg"}
	if diff := cmp.Diff(want, stub.calls[0]); diff != "" {
		t.Fatalf("arguments mismatch (-want +got):\n%s", diff)
	}
}

func TestWritableExtensionsParsedAndCached(t *testing.T) {
	stub := &stubExecutor{out: exiftool.Output{
		Stdout: "Writable file extensions:\n  360 3G2 jpg PDF PSC\n  TIFF mp4\n",
	}}
	gw := exiftool.NewGateway(stub)
	set, err := gw.WritableExtensions(context.Background())
	if err != nil {
		t.Fatalf("WritableExtensions: %v", err)
	}
	want := []string{"360", "3G2", "JPG", "MP4", "TIFF"}
	if diff := cmp.Diff(want, set.Sorted()); diff != "" {
		t.Fatalf("extensions mismatch (-want +got):\n%s", diff)
	}
	if !set.Contains(".jpg") || set.Contains("pdf") {
		t.Fatalf("Contains: jpg=%v pdf=%v", set.Contains(".jpg"), set.Contains("pdf"))
	}
	if _, err := gw.WritableExtensions(context.Background()); err != nil {
		t.Fatalf("cached call: %v", err)
	}
	if len(stub.calls) != 1 {
		t.Fatalf("expected one exiftool call, got %d", len(stub.calls))
	}
}

func TestWritableExtensionsBadHeader(t *testing.T) {
	stub := &stubExecutor{out: exiftool.Output{Stdout: "JPG TIFF\n"}}
	if _, err := exiftool.NewGateway(stub).WritableExtensions(context.Background()); !errors.Is(err, services.ErrProtocol) {
		t.Fatalf("expected protocol error, got %v", err)
	}
}

func TestGatewayAgainstBatchProcess(t *testing.T) {
	sup := exiftool.NewSupervisor(exiftool.WithBinary(fakeBinary(t)))
	defer sup.Close()
	gw := exiftool.NewGateway(sup)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "IMG_0001.jpg")
	if err := os.WriteFile(path, []byte("jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, ok, err := gw.ReadDate(ctx, path); err != nil || ok {
		t.Fatalf("fresh file: ok=%v err=%v", ok, err)
	}
	ts := time.Date(2015, 8, 9, 10, 11, 12, 0, time.UTC)
	for i := 0; i < 2; i++ {
		if err := gw.WriteDate(ctx, path, ts); err != nil {
			t.Fatalf("WriteDate #%d: %v", i+1, err)
		}
	}
	got, ok, err := gw.ReadDate(ctx, path)
	if err != nil || !ok || !got.Equal(ts) {
		t.Fatalf("ReadDate = %s ok=%v err=%v", got, ok, err)
	}

	missing := filepath.Join(t.TempDir(), "gone.jpg")
	if err := gw.WriteDate(ctx, missing, ts); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected tool error for missing file, got %v", err)
	}

	version, err := gw.Version(ctx)
	if err != nil || version != "13.10" {
		t.Fatalf("Version = %q, %v", version, err)
	}
	if sup.Spawns() != 1 {
		t.Fatalf("spawns = %d, want 1", sup.Spawns())
	}
}
