package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli"
)

func testApp() *cli.App {
	app := cli.NewApp()
	app.Flags = []cli.Flag{
		cli.BoolFlag{Name: "v"},
		cli.BoolFlag{Name: "vv"},
		cli.StringFlag{Name: "config"},
	}
	app.Commands = []cli.Command{
		{Name: "compile", Action: CompileScene},
		{Name: "info", Action: ShowSceneInfo},
		{Name: "validate", Action: ValidateScene},
	}
	return app
}

func TestCompileInfoValidate(t *testing.T) {
	dir := t.TempDir()
	objFile := filepath.Join(dir, "scene.obj")
	payload := "v 0 0 0\nv 1 0 0\nv 0 1 0\nv 1 1 0\ng quad\nf 1 2 4 3\ninstance quad 0 0 0 0 0 0 1 1 1\ninstance quad 2 0 0 0 0 45 1 1 1\n"
	if err := os.WriteFile(objFile, []byte(payload), 0644); err != nil {
		t.Fatal(err)
	}

	cfgFile := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgFile, []byte("logging:\n  level: error\nbuild:\n  parallel: false\n"), 0644); err != nil {
		t.Fatal(err)
	}

	app := testApp()
	if err := app.Run([]string{"lbvh", "--config", cfgFile, "compile", objFile, filepath.Join(dir, "skip.txt")}); err != nil {
		t.Fatal(err)
	}

	zipFile := filepath.Join(dir, "scene.zip")
	if _, err := os.Stat(zipFile); err != nil {
		t.Fatalf("expected compiled scene to be written: %v", err)
	}

	for _, command := range []string{"info", "validate"} {
		if err := app.Run([]string{"lbvh", "--config", cfgFile, command, zipFile}); err != nil {
			t.Fatalf("[%s] %v", command, err)
		}
	}
}

func TestCommandErrors(t *testing.T) {
	type spec struct {
		args   []string
		expErr string
	}

	specs := []spec{
		{[]string{"lbvh", "info"}, "missing compiled scene zip file"},
		{[]string{"lbvh", "validate", "scene.obj"}, "only compiled scene files"},
		{[]string{"lbvh", "--config", "/does/not/exist.yaml", "compile", "scene.obj"}, "loading config"},
	}

	app := testApp()
	for index, s := range specs {
		err := app.Run(s.args)
		if err == nil || !strings.Contains(err.Error(), s.expErr) {
			t.Fatalf("[spec %d] expected error containing %q; got %v", index, s.expErr, err)
		}
	}
}
