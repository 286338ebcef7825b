package main

import (
	"fmt"
	"os"

	"github.com/kr/pretty"
	"github.com/spf13/cobra"

	planetgen "github.com/gekko3d/planetgen"
	"github.com/gekko3d/planetgen/planetrt/rt/material"
)

type flagValues struct {
	config   string
	debug    bool
	noGPU    bool
	planet   string
	output   string
	heights  string
	matMaps  string
	table    string
	shaders  string
	logFile  string
	radius   float32
	subdiv   int
	lutSize  int
	meshFile string
	dump     bool
}

// applyFlags overrides the loaded config with flags given on the command line.
func applyFlags(cmd *cobra.Command, fv *flagValues, cfg *planetgen.Config) {
	changed := cmd.Flags().Changed
	if fv.debug {
		cfg.Logging.Level = "debug"
	}
	if fv.noGPU {
		cfg.GPU.Enabled = false
	}
	if changed("planet") {
		cfg.Planet.Name = fv.planet
	}
	if changed("radius") {
		cfg.Planet.Radius = fv.radius
	}
	if changed("subdivisions") {
		cfg.Planet.Subdivisions = fv.subdiv
	}
	if changed("out") {
		cfg.Paths.OutputDir = fv.output
	}
	if changed("heightmaps") {
		cfg.Paths.HeightmapDir = fv.heights
		if !changed("material-maps") {
			cfg.Paths.MaterialMapDir = fv.heights
		}
	}
	if changed("material-maps") {
		cfg.Paths.MaterialMapDir = fv.matMaps
	}
	if changed("table") {
		cfg.Paths.MaterialTable = fv.table
	}
	if changed("shaders") {
		cfg.GPU.ShaderDir = fv.shaders
	}
	if changed("log-file") {
		cfg.Logging.LogFile = fv.logFile
	}
	if changed("lut-size") {
		cfg.GPU.LutSize = fv.lutSize
	}
	if changed("mesh") {
		cfg.Paths.MeshFile = fv.meshFile
	}
}

func setup(cmd *cobra.Command, fv *flagValues) (*planetgen.Config, *planetgen.DefaultLogger, error) {
	cfg, err := planetgen.LoadConfig(fv.config)
	if err != nil {
		return nil, nil, err
	}
	applyFlags(cmd, fv, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	file := planetgen.LogFileConfig{}
	if cfg.Logging.LogFile != "" {
		file = planetgen.DefaultLogFileConfig(cfg.Logging.LogFile)
	}
	return cfg, planetgen.NewDefaultLogger("planetbake", cfg.Logging.Level, file, true), nil
}

func bindFlags(cmd *cobra.Command, fv *flagValues) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&fv.config, "config", "", "path to config file")
	pf.BoolVar(&fv.debug, "debug", false, "enable debug logging")
	pf.BoolVar(&fv.noGPU, "no-gpu", false, "use the cpu kernels")
	pf.StringVar(&fv.planet, "planet", "", "planet name in the material table")
	pf.StringVarP(&fv.output, "out", "o", "", "output directory")
	pf.StringVar(&fv.heights, "heightmaps", "", "heightmap directory")
	pf.StringVar(&fv.matMaps, "material-maps", "", "material map directory (defaults to --heightmaps)")
	pf.StringVar(&fv.table, "table", "", "material rule table (matcolormap.json)")
	pf.StringVar(&fv.shaders, "shaders", "", "load kernels from this directory")
	pf.StringVar(&fv.logFile, "log-file", "", "also write logs to this file")
	pf.Float32Var(&fv.radius, "radius", 0, "planet radius")
	pf.IntVar(&fv.subdiv, "subdivisions", 0, "segments per face edge")
	pf.IntVar(&fv.lutSize, "lut-size", 0, "edge length of standalone latitude tables")
	pf.StringVar(&fv.meshFile, "mesh", "", "mesh file, relative to the output directory")
}

func newRootCmd() *cobra.Command {
	fv := &flagValues{}
	root := &cobra.Command{
		Use:           "planetbake",
		Short:         "Bake planet surface maps and cube-sphere meshes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	bindFlags(root, fv)

	root.AddCommand(
		&cobra.Command{
			Use:   "bake",
			Short: "Bake surface maps for every face and export the mesh",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, log, err := setup(cmd, fv)
				if err != nil {
					return err
				}
				defer log.Sync()

				b, err := planetgen.NewBaker(cfg, log.With("run", "bake"))
				if err != nil {
					return err
				}
				defer b.Close()
				rep, err := b.Run()
				if err != nil {
					log.Errorf("bake %s failed: %v", rep.RunID, err)
					return err
				}
				if rep.Count(planetgen.FaceBaked) == 0 {
					return fmt.Errorf("no face baked")
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "mesh",
			Short: "Build and export the cube-sphere mesh only",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, log, err := setup(cmd, fv)
				if err != nil {
					return err
				}
				defer log.Sync()

				b, err := planetgen.NewBaker(cfg, log)
				if err != nil {
					return err
				}
				meshes, err := b.BuildMesh()
				if err != nil {
					return err
				}
				rep := &planetgen.BakeReport{RunID: b.RunID()}
				if err := b.ExportMesh(meshes, rep); err != nil {
					return err
				}
				log.Infof("%s", rep.Summary())
				return nil
			},
		},
		&cobra.Command{
			Use:   "lut",
			Short: "Write the latitude table of every face",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, log, err := setup(cmd, fv)
				if err != nil {
					return err
				}
				defer log.Sync()

				b, err := planetgen.NewBaker(cfg, log)
				if err != nil {
					return err
				}
				defer b.Close()
				_, err = b.BakeLatitudeTables()
				return err
			},
		},
	)

	materials := &cobra.Command{
		Use:   "materials",
		Short: "List the planets of the material table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd, fv)
			if err != nil {
				return err
			}
			defer log.Sync()

			all, err := material.LoadPlanetMaterials(cfg.Paths.MaterialTable)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !fv.dump {
				for _, name := range all.Names() {
					p := all[name]
					simple, bad := p.SimpleMaterialList()
					fmt.Fprintf(out, "%s: %d simple, %d complex rules, %d ores\n",
						name, len(simple), len(p.ComplexRules()), len(p.OreList()))
					for _, k := range bad {
						log.Warnf("%s: simple material key %q is not numeric", name, k)
					}
				}
				return nil
			}
			p, err := planetgen.SelectPlanet(all, cfg.Planet.Name)
			if err != nil {
				return err
			}
			_, err = pretty.Fprintf(out, "%# v\n", p)
			return err
		},
	}
	materials.Flags().BoolVar(&fv.dump, "dump", false, "print the selected planet definition")
	root.AddCommand(materials)

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
