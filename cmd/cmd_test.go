package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"honeycomb/honeycomb"
	"honeycomb/layout"

	. "github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v3"
)

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestLayoutCommand(t *testing.T) {
	Convey("layout prints every cell of the configured shape", t, func() {
		out, err := execute("layout", "--format", "json", "--config", "")
		So(err, ShouldBeNil)

		var doc layoutDoc
		So(json.Unmarshal([]byte(out), &doc), ShouldBeNil)
		So(doc.Shape, ShouldEqual, honeycomb.Classic.String())
		So(len(doc.Cells), ShouldEqual, honeycomb.Classic.Size())
		So(doc.Width, ShouldAlmostEqual, 5*layout.DefaultFootprint.CellSize*0.85, 1e-9)

		Convey("And reads its shape from the config file", func() {
			path := filepath.Join(t.TempDir(), "honeycomb.yaml")
			So(os.WriteFile(path, []byte("shape: [1, 2, 1]\n"), 0o600), ShouldBeNil)

			out, err := execute("layout", "--format", "yaml", "--config", path)
			So(err, ShouldBeNil)
			var doc layoutDoc
			So(yaml.Unmarshal([]byte(out), &doc), ShouldBeNil)
			So(doc.Shape, ShouldEqual, "1,2,1")
			So(len(doc.Cells), ShouldEqual, 4)
		})

		Convey("Unknown formats fail", func() {
			_, err := execute("layout", "--format", "xml", "--config", "")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestConfigCommand(t *testing.T) {
	Convey("config prints the effective settings", t, func() {
		out, err := execute("config", "--format", "yaml", "--config", "")
		So(err, ShouldBeNil)
		So(out, ShouldContainSubstring, "delay_per_unit_distance: 40ms")

		out, err = execute("config", "--format", "toml", "--config", "")
		So(err, ShouldBeNil)
		So(out, ShouldContainSubstring, "[ripple]")
	})
}
