package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tendant/kafka-files/pkg/kafkafile"
)

type fileFlags struct {
	md5         string
	fileType    int
	clusterID   int64
	description string
	name        string
}

func (f *fileFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.md5, "md5", "", "md5 of the file (computed when omitted)")
	cmd.Flags().IntVar(&f.fileType, "type", -1, "file type code (inferred from the suffix when omitted)")
	cmd.Flags().Int64Var(&f.clusterID, "cluster", kafkafile.NoCluster, "cluster id owning a config file")
	cmd.Flags().StringVar(&f.description, "description", "", "file description")
	cmd.Flags().StringVar(&f.name, "name", "", "file name to register (defaults to the base name of the path)")
}

// buildRequest opens path and fills a request from the flags. The caller
// closes the returned file.
func (f *fileFlags) buildRequest(path string) (*kafkafile.FileRequest, *os.File, error) {
	name := f.name
	if name == "" {
		name = filepath.Base(path)
	}

	sum := f.md5
	if sum == "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		sum = kafkafile.Md5Hex(data)
	}

	req := &kafkafile.FileRequest{
		ClusterID:   f.clusterID,
		FileName:    name,
		FileMd5:     sum,
		Description: f.description,
	}

	code := f.fileType
	if code < 0 {
		code = inferFileType(name)
	}
	if code >= 0 {
		req.FileType = &code
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	req.Content = file
	return req, file, nil
}

func inferFileType(name string) int {
	for _, info := range kafkafile.FileTypes() {
		if strings.HasSuffix(name, info.Suffix) {
			return info.Code
		}
	}
	return -1
}

func statusError(op string, status kafkafile.Status) error {
	return fmt.Errorf("%s failed: %s (code %d)", op, status.String(), status.Code())
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid file id: %s", arg)
	}
	return id, nil
}

// NewUploadCommand creates the upload command
func NewUploadCommand(factory RegistryFactory) *cobra.Command {
	var flags fileFlags

	cmd := &cobra.Command{
		Use:   "upload <path>",
		Short: "Register a new package or config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, file, err := flags.buildRequest(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			operator, _ := cmd.Flags().GetString("operator")
			return withRegistry(cmd, factory, func(registry kafkafile.Registry) error {
				if status := registry.Upload(cmd.Context(), req, operator); !status.OK() {
					return statusError("upload", status)
				}
				record := registry.GetByName(cmd.Context(), req.FileName)
				if record == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s\n", req.FileName)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s (id %d, md5 %s)\n", record.FileName, record.ID, record.FileMd5)
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}

// NewReplaceCommand creates the replace command
func NewReplaceCommand(factory RegistryFactory) *cobra.Command {
	var flags fileFlags

	cmd := &cobra.Command{
		Use:   "replace <id> <path>",
		Short: "Replace the content of a registered file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			req, file, err := flags.buildRequest(args[1])
			if err != nil {
				return err
			}
			defer file.Close()
			req.ID = id
			req.Modify = true
			// the stored type decides; only pass an explicit --type through
			if flags.fileType < 0 {
				req.FileType = nil
			}

			operator, _ := cmd.Flags().GetString("operator")
			return withRegistry(cmd, factory, func(registry kafkafile.Registry) error {
				if status := registry.Save(cmd.Context(), req, operator); !status.OK() {
					return statusError("replace", status)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Replaced file %d with %s (md5 %s)\n", id, req.FileName, req.FileMd5)
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}

// NewDeleteCommand creates the delete command
func NewDeleteCommand(factory RegistryFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a file record (stored bytes are kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withRegistry(cmd, factory, func(registry kafkafile.Registry) error {
				if status := registry.Delete(cmd.Context(), id); !status.OK() {
					return statusError("delete", status)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted file %d\n", id)
				return nil
			})
		},
	}
}

// NewListCommand creates the list command
func NewListCommand(factory RegistryFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRegistry(cmd, factory, func(registry kafkafile.Registry) error {
				records := registry.List(cmd.Context())
				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No files found.")
					return nil
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tTYPE\tCLUSTER\tMD5\tOPERATOR\tUPDATED")
				for _, record := range records {
					fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\t%s\n",
						record.ID, record.FileName, record.FileType.Message(), record.ClusterID,
						record.FileMd5, record.Operator, record.UpdatedAt.Format("2006-01-02 15:04:05"))
				}
				return w.Flush()
			})
		},
	}
}

// NewPreviewCommand creates the preview command
func NewPreviewCommand(factory RegistryFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <id>",
		Short: "Print the content of a config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withRegistry(cmd, factory, func(registry kafkafile.Registry) error {
				content, status := registry.DownloadForPreview(cmd.Context(), id)
				if !status.OK() {
					return statusError("preview", status)
				}
				fmt.Fprint(cmd.OutOrStdout(), content)
				return nil
			})
		},
	}
}

// NewEnumsCommand creates the enums command
func NewEnumsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "enums",
		Short: "Show file types and storage kinds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "FILE TYPE\tCODE\tSUFFIX")
			for _, info := range kafkafile.FileTypes() {
				fmt.Fprintf(w, "%s\t%d\t%s\n", info.Message, info.Code, info.Suffix)
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, "STORAGE\tCODE\t")
			for _, info := range kafkafile.StorageKinds() {
				fmt.Fprintf(w, "%s\t%d\t\n", info.Message, info.Code)
			}
			return w.Flush()
		},
	}
}
