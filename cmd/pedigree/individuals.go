package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"pedigreecore/internal/core"
	"pedigreecore/pkg/domain"
)

const dateLayout = "2006-01-02"

// individualFlags mirrors the editable Individual fields on the command line.
type individualFlags struct {
	id, name, sex, breed      string
	registration, dob, color  string
	kennel, tattoo, microchip string
	breeder, sire, dam        string
}

func (f *individualFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.id, "id", "", "identifier (generated when empty)")
	fl.StringVar(&f.name, "name", "", "registered name")
	fl.StringVar(&f.sex, "sex", "", "Male or Female")
	fl.StringVar(&f.breed, "breed", "", "breed")
	fl.StringVar(&f.registration, "registration", "", "registration number")
	fl.StringVar(&f.dob, "dob", "", "date of birth (YYYY-MM-DD)")
	fl.StringVar(&f.color, "color", "", "coat color")
	fl.StringVar(&f.kennel, "kennel", "", "kennel name")
	fl.StringVar(&f.tattoo, "tattoo", "", "tattoo number")
	fl.StringVar(&f.microchip, "microchip", "", "microchip number")
	fl.StringVar(&f.breeder, "breeder", "", "breeder")
	fl.StringVar(&f.sire, "sire", "", "sire id")
	fl.StringVar(&f.dam, "dam", "", "dam id")
}

// apply copies every flag the user set onto ind. Setting --sire or --dam to
// an empty string clears the reference.
func (f *individualFlags) apply(cmd *cobra.Command, ind *domain.Individual) error {
	changed := cmd.Flags().Changed
	set := func(name string, dst *string, v string) {
		if changed(name) {
			*dst = v
		}
	}
	set("id", &ind.ID, f.id)
	set("name", &ind.Name, f.name)
	set("breed", &ind.Breed, f.breed)
	set("registration", &ind.RegistrationNumber, f.registration)
	set("color", &ind.Color, f.color)
	set("kennel", &ind.KennelName, f.kennel)
	set("tattoo", &ind.TattooNumber, f.tattoo)
	set("microchip", &ind.Microchip, f.microchip)
	set("breeder", &ind.Breeder, f.breeder)
	if changed("sex") {
		ind.Sex = domain.Sex(f.sex)
	}
	if changed("sire") {
		ind.SireID = domain.Ref(f.sire)
	}
	if changed("dam") {
		ind.DamID = domain.Ref(f.dam)
	}
	if changed("dob") {
		if f.dob == "" {
			ind.DateOfBirth = nil
		} else {
			t, err := time.Parse(dateLayout, f.dob)
			if err != nil {
				return fmt.Errorf("--dob: %w", err)
			}
			ind.DateOfBirth = &t
		}
	}
	return nil
}

// readIndividuals decodes a single JSON object or an array of objects from
// path, or from stdin when path is "-".
func (a *app) readIndividuals(path string) ([]domain.Individual, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(a.stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var list []domain.Individual
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("decode individuals: %w", err)
		}
		return list, nil
	}
	var one domain.Individual
	if err := json.Unmarshal(data, &one); err != nil {
		return nil, fmt.Errorf("decode individual: %w", err)
	}
	return []domain.Individual{one}, nil
}

type writeOutcome struct {
	Individual domain.Individual  `json:"individual"`
	Warnings   []domain.Violation `json:"warnings,omitempty"`
}

func (a *app) addCommand() *cobra.Command {
	var (
		file  string
		flags individualFlags
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register individuals from flags or a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var batch []domain.Individual
			if file != "" {
				var err error
				if batch, err = a.readIndividuals(file); err != nil {
					return err
				}
			} else {
				var ind domain.Individual
				if err := flags.apply(cmd, &ind); err != nil {
					return err
				}
				batch = []domain.Individual{ind}
			}
			out := make([]writeOutcome, 0, len(batch))
			for _, ind := range batch {
				created, res, err := a.svc.CreateIndividual(cmd.Context(), ind)
				if err != nil {
					return fmt.Errorf("add %q: %w", ind.Name, err)
				}
				out = append(out, writeOutcome{Individual: created, Warnings: res.Violations})
			}
			if file == "" {
				return a.printJSON(out[0])
			}
			return a.printJSON(out)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON object or array of individuals (- for stdin)")
	flags.register(cmd)
	return cmd
}

func (a *app) updateCommand() *cobra.Command {
	var flags individualFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of an existing individual",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("id") {
				return fmt.Errorf("--id cannot be changed")
			}
			updated, res, err := a.svc.UpdateIndividual(cmd.Context(), args[0], func(ind *core.Individual) error {
				return flags.apply(cmd, ind)
			})
			if err != nil {
				return err
			}
			return a.printJSON(writeOutcome{Individual: updated, Warnings: res.Violations})
		},
	}
	flags.register(cmd)
	return cmd
}

func (a *app) validateCommand() *cobra.Command {
	var (
		file  string
		flags individualFlags
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check an individual against the pedigree rules without saving it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var ind domain.Individual
			if file != "" {
				batch, err := a.readIndividuals(file)
				if err != nil {
					return err
				}
				if len(batch) != 1 {
					return fmt.Errorf("validate expects one individual, got %d", len(batch))
				}
				ind = batch[0]
			}
			if err := flags.apply(cmd, &ind); err != nil {
				return err
			}
			res, err := a.svc.ValidateIndividual(cmd.Context(), ind)
			if err != nil {
				return err
			}
			violations := res.Violations
			if violations == nil {
				violations = []domain.Violation{}
			}
			return a.printJSON(map[string]any{"valid": !res.HasBlocking(), "violations": violations})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON individual (- for stdin)")
	flags.register(cmd)
	return cmd
}

func (a *app) getCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one individual",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ind, err := a.svc.GetIndividual(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printJSON(ind)
		},
	}
}

func (a *app) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all individuals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.svc.ListIndividuals(cmd.Context())
			if err != nil {
				return err
			}
			return a.printJSON(list)
		},
	}
}

func (a *app) searchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Case-insensitive search over names and registry numbers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.svc.SearchIndividuals(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printJSON(list)
		},
	}
}

func (a *app) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove an individual that has no offspring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.svc.DeleteIndividual(cmd.Context(), args[0]); err != nil {
				return err
			}
			return a.printJSON(map[string]string{"deleted": args[0]})
		},
	}
}
