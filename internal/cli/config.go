package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cpgrab/cpgrab/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and write cpgrab settings",
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one setting, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if len(args) == 0 {
			for _, k := range config.Keys() {
				v, _ := cfg.Value(k)
				fmt.Printf("%s = %s\n", k, v)
			}
			return nil
		}
		v, ok := cfg.Value(args[0])
		if !ok {
			return fmt.Errorf("unknown config key %q (known: %s)", args[0], strings.Join(config.Keys(), ", "))
		}
		fmt.Println(v)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if err := cfg.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return err
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("%s = %s", args[0], args[1])))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Path()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the config file in $EDITOR",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Path()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			if err := config.Save(config.Default()); err != nil {
				return err
			}
		}
		editor := os.Getenv("EDITOR")
		if editor == "" {
			editor = "vi"
		}
		fmt.Println(headerStyle.Render("Opening config: " + path))
		edit := exec.CommandContext(cmd.Context(), editor, path)
		edit.Stdin, edit.Stdout, edit.Stderr = os.Stdin, os.Stdout, os.Stderr
		if err := edit.Run(); err != nil {
			return fmt.Errorf("editor %q failed: %w (set $EDITOR)", editor, err)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd, configSetCmd, configPathCmd, configEditCmd)
}
